package bootconfig

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idservices-admin/internal/config"
	"idservices-admin/internal/infrastructure/apiclient"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "staging", Maintenance: true},
		OIDC: config.OIDCConfig{
			Authority:             "https://id.example.fi/realms/ids",
			ClientID:              "ids-admin",
			RedirectURI:           "https://admin.example.fi/callback",
			ResponseType:          "code",
			Scope:                 "openid profile",
			PostLogoutRedirectURI: "https://admin.example.fi/",
			PublicKey:             "secret-ish",
		},
	}
}

func newServer() *httptest.Server {
	r := gin.New()
	NewHandler(FromConfig(testConfig())).RegisterRoutes(r)
	return httptest.NewServer(r)
}

func TestGetConfig(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/config")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["maintenance"])
	assert.Equal(t, "staging", body["environment"])

	oidc := body["oidcConfig"].(map[string]interface{})
	assert.Equal(t, "ids-admin", oidc["client_id"])
	assert.Equal(t, "https://admin.example.fi/", oidc["post_logout_redirect_uri"])
	assert.NotContains(t, oidc, "PublicKey")
}

func TestLoad(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	boot, err := Load(context.Background(), apiclient.New(apiclient.Config{BaseURL: srv.URL}), "/config")
	require.NoError(t, err)
	assert.Equal(t, FromConfig(testConfig()), *boot)
}

func TestLoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"down for maintenance"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), apiclient.New(apiclient.Config{BaseURL: srv.URL}), "/config")
	var info *apiclient.ErrorInfo
	require.ErrorAs(t, err, &info)
	assert.Equal(t, http.StatusServiceUnavailable, info.Status)
	assert.Equal(t, "down for maintenance", info.Message)
}
