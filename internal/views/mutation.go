package views

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/fetch"
	"idservices-admin/internal/infrastructure/apiclient"
)

var ErrNotSignedIn = errors.New("not signed in")

// Mutations performs create/update/delete calls and reports the outcome as a
// snackbar message.
type Mutations struct {
	caller fetch.Caller
	tokens fetch.TokenSource
	state  *appstate.Store
}

func NewMutations(deps Deps) *Mutations {
	return &Mutations{caller: deps.Caller, tokens: deps.Tokens, state: deps.State}
}

func (m *Mutations) Create(ctx context.Context, url string, body any, success string) (json.RawMessage, error) {
	return m.do(ctx, http.MethodPost, url, body, success)
}

func (m *Mutations) Update(ctx context.Context, url string, body any, success string) (json.RawMessage, error) {
	return m.do(ctx, http.MethodPut, url, body, success)
}

func (m *Mutations) Delete(ctx context.Context, url string, success string) error {
	_, err := m.do(ctx, http.MethodDelete, url, nil, success)
	return err
}

func (m *Mutations) do(ctx context.Context, method, url string, body any, success string) (json.RawMessage, error) {
	token, ok := "", false
	if m.tokens != nil {
		token, ok = m.tokens.Token()
	}
	if !ok {
		m.notify(appstate.SeverityError, ErrNotSignedIn.Error())
		return nil, ErrNotSignedIn
	}

	var out json.RawMessage
	err := m.caller.Call(ctx, apiclient.Request{URL: url, Method: method, Body: body, Token: token}, &out)
	if err != nil {
		info := apiclient.AsErrorInfo(err)
		log.Warn().
			Str("method", method).
			Str("url", url).
			Int("status", info.Status).
			Msg(info.Message)
		m.notify(appstate.SeverityError, info.Message)
		return nil, info
	}

	m.notify(appstate.SeveritySuccess, success)
	return out, nil
}

func (m *Mutations) notify(sev appstate.Severity, text string) {
	if m.state == nil || text == "" {
		return
	}
	m.state.ShowSnackbar(sev, text)
}
