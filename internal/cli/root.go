// Package cli implements the idadmin command-line interface: the
// interactive console and non-interactive record and export commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"idservices-admin/internal/auth"
	"idservices-admin/internal/config"
	"idservices-admin/internal/infrastructure/apiclient"
	"idservices-admin/internal/registry"
)

var (
	// Global flags
	apiURL    string
	configURL string
	token     string
	tokenFile string
	envFile   string
	startPath string

	cfg       *config.Config
	catalogue = registry.Default()
)

// rootCmd is the base command of the admin console.
var rootCmd = &cobra.Command{
	Use:   "idadmin",
	Short: "Identifier Services admin console",
	Long: `idadmin is the staff console of the Identifier Services ISBN/ISMN and
ISSN registries.

Run "idadmin tui" for the interactive console. The other commands print
registry records or request statistics exports without a terminal UI.

The access token comes from --token, --token-file, ACCESS_TOKEN or
ACCESS_TOKEN_FILE; signing in happens at the identity provider.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Registry API base URL (default $REGISTRY_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configURL, "config-url", "", "Boot configuration URL (default $CONSOLE_CONFIG_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Access token")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "File holding the access token")
	rootCmd.PersistentFlags().StringVar(&envFile, "config", "", "Env file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&startPath, "path", "", "Start-up path, e.g. /issn-registry/publishers")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command, _ []string) error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := config.LoadDotenv(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		loaded.Registry.APIURL = apiURL
	}
	if flags.Changed("config-url") {
		loaded.Console.ConfigURL = configURL
	}
	if flags.Changed("token") {
		loaded.Console.Token = token
	}
	if flags.Changed("token-file") {
		loaded.Console.TokenFile = tokenFile
	}
	if flags.Changed("path") {
		loaded.Console.StartPath = startPath
	}

	cfg = loaded
	return nil
}

// newSession builds the session from the configured token or token file.
func newSession() (*auth.Session, error) {
	raw := cfg.Console.Token
	if raw == "" && cfg.Console.TokenFile != "" {
		t, err := auth.LoadTokenFile(cfg.Console.TokenFile)
		if err != nil {
			return nil, err
		}
		raw = t
	}
	return auth.NewSession(raw), nil
}

func newClient(baseURL string) *apiclient.Client {
	return apiclient.New(apiclient.Config{
		BaseURL: baseURL,
		Timeout: cfg.Registry.RequestTimeout,
	})
}

// serverURL is the base of the console's own server, which also serves the
// boot configuration.
func serverURL() string {
	return strings.TrimSuffix(strings.TrimSuffix(cfg.Console.ConfigURL, "/"), "/config")
}

func lookupResource(name string) (registry.Resource, error) {
	res, ok := catalogue.Lookup(name)
	if !ok {
		return registry.Resource{}, fmt.Errorf("unknown resource %q (see \"idadmin resources\")", name)
	}
	return res, nil
}
