// Package bootconfig serves and loads the configuration the console reads
// once at start: identity provider settings, maintenance flag, environment.
package bootconfig

import "idservices-admin/internal/config"

// OIDCConfig uses the field names oidc clients expect.
type OIDCConfig struct {
	Authority             string `json:"authority"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	ResponseType          string `json:"response_type"`
	Scope                 string `json:"scope"`
	PostLogoutRedirectURI string `json:"post_logout_redirect_uri"`
}

type BootConfig struct {
	OIDCConfig  OIDCConfig `json:"oidcConfig"`
	Maintenance bool       `json:"maintenance"`
	Environment string     `json:"environment"`
}

// FromConfig builds the public part of the server configuration. Key
// material never leaves the server.
func FromConfig(cfg *config.Config) BootConfig {
	return BootConfig{
		OIDCConfig: OIDCConfig{
			Authority:             cfg.OIDC.Authority,
			ClientID:              cfg.OIDC.ClientID,
			RedirectURI:           cfg.OIDC.RedirectURI,
			ResponseType:          cfg.OIDC.ResponseType,
			Scope:                 cfg.OIDC.Scope,
			PostLogoutRedirectURI: cfg.OIDC.PostLogoutRedirectURI,
		},
		Maintenance: cfg.App.Maintenance,
		Environment: cfg.App.Environment,
	}
}
