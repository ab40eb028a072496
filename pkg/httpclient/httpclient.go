package httpclient

import (
	"net"
	"net/http"
	"time"
)

// New returns a pooled client for talking to the registry API.
// timeout <= 0 leaves the client without an overall deadline; callers are
// then expected to bound requests through their context.
func New(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       30 * time.Second,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	cli := &http.Client{Transport: tr}
	if timeout > 0 {
		cli.Timeout = timeout
	}
	return cli
}
