package bootconfig

import (
	"context"
	"fmt"

	"idservices-admin/internal/fetch"
)

// Load fetches the configuration once. The endpoint is public, so no token
// is required.
func Load(ctx context.Context, caller fetch.Caller, url string) (*BootConfig, error) {
	ctrl := fetch.NewItem[BootConfig](caller, nil, fetch.Options{Prefetch: true, FetchOnce: true})
	defer ctrl.Close()

	job := ctrl.Sync(ctx, fetch.Query{URL: url})
	if job == nil {
		return nil, fmt.Errorf("load config from %s: request not started", url)
	}
	if err := job.Wait(ctx); err != nil {
		return nil, err
	}

	st := ctrl.State()
	if st.HasError() {
		return nil, fmt.Errorf("load config from %s: %w", url, st.Err)
	}
	boot := st.Data
	return &boot, nil
}
