package appstate

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// TypeOfServiceKey is the preference key holding the last active registry.
const TypeOfServiceKey = "typeOfService"

var servicePathPrefixes = map[string]ServiceType{
	"/isbn-registry": ServiceISBN,
	"/issn-registry": ServiceISSN,
}

// Valid reports whether t names a known registry.
func (t ServiceType) Valid() bool {
	return t == ServiceISBN || t == ServiceISSN
}

// ServiceTypeFromPath matches the registry prefix of a console path.
func ServiceTypeFromPath(path string) (ServiceType, bool) {
	for prefix, t := range servicePathPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return t, true
		}
	}
	return "", false
}

// ResolveTypeOfService picks the registry for a new session: the path prefix
// wins, then the stored preference, then ISBN. The result is written back to
// prefs. A failing preference store degrades to the path/default result.
func ResolveTypeOfService(ctx context.Context, path string, prefs PreferenceStore) (ServiceType, error) {
	t, ok := ServiceTypeFromPath(path)

	if !ok && prefs != nil {
		stored, found, err := prefs.Get(ctx, TypeOfServiceKey)
		if err != nil {
			log.Warn().Err(err).Msg("read type of service preference")
		} else if found && ServiceType(stored).Valid() {
			t, ok = ServiceType(stored), true
		}
	}
	if !ok {
		t = ServiceISBN
	}

	if prefs != nil {
		if err := prefs.Set(ctx, TypeOfServiceKey, string(t)); err != nil {
			log.Warn().Err(err).Str("type_of_service", string(t)).Msg("persist type of service preference")
		}
	}
	return t, nil
}
