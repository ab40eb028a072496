package cli

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/config"
	"idservices-admin/internal/domains/bootconfig"
	"idservices-admin/internal/infrastructure/cache"
	"idservices-admin/internal/tui"
	"idservices-admin/internal/views"
	"idservices-admin/pkg/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive console",
	Long: `Start the interactive console.

The boot configuration is loaded first; when the service is under
maintenance only the maintenance screen is shown. The registry (ISBN or
ISSN) is picked from --path, then from the stored preference.

Logs go to console.log in the console directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConsole(cmd.Context())
	},
}

// RunConsole starts the Bubble Tea program and blocks until it exits.
func RunConsole(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logFile, err := logger.InitFile(cfg.App.Environment, filepath.Join(cfg.Console.Dir, "console.log"))
	if err != nil {
		return err
	}
	defer logFile.Close()

	client := newClient(cfg.Registry.APIURL)

	var boot *bootconfig.BootConfig
	if cfg.Console.ConfigURL != "" {
		boot, err = bootconfig.Load(ctx, client, cfg.Console.ConfigURL)
		if err != nil {
			return fmt.Errorf("load boot configuration: %w", err)
		}
	}

	prefs, closePrefs, err := openPreferences(ctx)
	if err != nil {
		return err
	}
	defer closePrefs()

	store, err := appstate.Init(ctx, cfg.Console.StartPath, prefs)
	if err != nil {
		return fmt.Errorf("init app state: %w", err)
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	log.Info().
		Str("api_url", cfg.Registry.APIURL).
		Str("type_of_service", string(store.State().TypeOfService)).
		Msg("console started")

	model := tui.New(ctx, tui.Options{
		Deps:      views.Deps{Caller: client, Tokens: session, State: store},
		Catalogue: catalogue,
		Session:   session,
		Boot:      boot,
		StartPath: cfg.Console.StartPath,
		TokenFile: cfg.Console.TokenFile,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}

// openPreferences opens the configured preference store. The redis backend
// shares the selection between machines of the same profile.
func openPreferences(ctx context.Context) (appstate.PreferenceStore, func(), error) {
	switch cfg.Console.PrefsBackend {
	case config.PrefsRedis:
		rc := cache.NewRedisClient(cfg.Redis)
		if err := rc.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect preference store: %w", err)
		}
		closeFn := func() {
			if err := rc.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis")
			}
		}
		return appstate.NewRedisStore(cache.NewRedisCache(rc), cfg.Console.Profile), closeFn, nil
	default:
		return appstate.NewFileStore(filepath.Join(cfg.Console.Dir, "preferences.json")), func() {}, nil
	}
}
