package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

// Config holds the configuration of every binary, populated from
// environment variables (optionally from a .env file).
type Config struct {
	App      AppConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	OIDC     OIDCConfig
	Registry RegistryConfig
	Console  ConsoleConfig
	Export   ExportConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	Maintenance bool
	CORSOrigins []string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string // idservices-exports
	UseSSL    bool
	URLExpiry time.Duration
}

// OIDCConfig is handed to the console as-is by GET /config; PublicKey and
// Issuer are used by the API to verify bearer tokens.
type OIDCConfig struct {
	Authority             string
	ClientID              string
	RedirectURI           string
	ResponseType          string
	Scope                 string
	PostLogoutRedirectURI string
	PublicKey             string
	Issuer                string
}

// RegistryConfig points at the Identifier Services registry API.
type RegistryConfig struct {
	APIURL         string
	ServiceToken   string // used by the worker for scheduled exports
	RequestTimeout time.Duration
}

type ConsoleConfig struct {
	ConfigURL    string
	Token        string
	TokenFile    string
	Dir          string
	Profile      string
	PrefsBackend string // file, redis
	StartPath    string
}

type ExportConfig struct {
	Concurrency int
	Schedule    string // cron, empty disables the monthly export
	StatusTTL   time.Duration
	Timezone    string
	Retention   time.Duration // export files older than this are removed daily
}

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"

	PrefsFile  = "file"
	PrefsRedis = "redis"
)

// LoadDotenv loads the given env files (default ".env") if they exist.
// Variables already set in the environment win.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		existing = append(existing, f)
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads config from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Identifier Services Admin"),
			Environment: getEnv("APP_ENV", EnvDevelopment),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Maintenance: getEnvBool("MAINTENANCE", false),
			CORSOrigins: getEnvList("CORS_ORIGINS", nil),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "idservices-exports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			URLExpiry: getEnvDuration("MINIO_URL_EXPIRY", 24*time.Hour),
		},
		OIDC: OIDCConfig{
			Authority:             getEnv("OIDC_AUTHORITY", ""),
			ClientID:              getEnv("OIDC_CLIENT_ID", ""),
			RedirectURI:           getEnv("OIDC_REDIRECT_URI", ""),
			ResponseType:          getEnv("OIDC_RESPONSE_TYPE", "code"),
			Scope:                 getEnv("OIDC_SCOPE", "openid profile email"),
			PostLogoutRedirectURI: getEnv("OIDC_POST_LOGOUT_REDIRECT_URI", ""),
			PublicKey:             getEnv("OIDC_PUBLIC_KEY", ""),
			Issuer:                getEnv("OIDC_ISSUER", ""),
		},
		Registry: RegistryConfig{
			APIURL:         getEnv("REGISTRY_API_URL", "http://localhost:8081"),
			ServiceToken:   getEnv("REGISTRY_SERVICE_TOKEN", ""),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Console: ConsoleConfig{
			ConfigURL:    getEnv("CONSOLE_CONFIG_URL", "http://localhost:8080/config"),
			Token:        getEnv("ACCESS_TOKEN", ""),
			TokenFile:    getEnv("ACCESS_TOKEN_FILE", ""),
			Dir:          getEnv("CONSOLE_DIR", defaultConsoleDir()),
			Profile:      getEnv("CONSOLE_PROFILE", "default"),
			PrefsBackend: getEnv("CONSOLE_PREFS", PrefsFile),
			StartPath:    getEnv("CONSOLE_START_PATH", "/"),
		},
		Export: ExportConfig{
			Concurrency: getEnvInt("EXPORT_CONCURRENCY", 2),
			Schedule:    getEnv("EXPORT_SCHEDULE", "0 3 1 * *"),
			StatusTTL:   getEnvDuration("EXPORT_STATUS_TTL", 7*24*time.Hour),
			Timezone:    getEnv("EXPORT_TIMEZONE", "Europe/Helsinki"),
			Retention:   getEnvDuration("EXPORT_RETENTION", 90*24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config; production additionally requires the token
// verification key.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.App,
		validation.Field(&c.App.Environment, validation.Required, validation.In(EnvDevelopment, EnvStaging, EnvProduction)),
		validation.Field(&c.App.Port, validation.Required, is.Port),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	if err := validation.ValidateStruct(&c.Registry,
		validation.Field(&c.Registry.APIURL, validation.Required, is.URL),
		validation.Field(&c.Registry.RequestTimeout, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	// presigned links are limited to 1s..7d by the S3 API
	if err := validation.ValidateStruct(&c.MinIO,
		validation.Field(&c.MinIO.Bucket, validation.Required),
		validation.Field(&c.MinIO.URLExpiry, validation.Required, validation.Min(time.Second), validation.Max(7*24*time.Hour)),
	); err != nil {
		return fmt.Errorf("minio: %w", err)
	}

	if err := validation.ValidateStruct(&c.Console,
		validation.Field(&c.Console.ConfigURL, is.URL),
		validation.Field(&c.Console.Profile, validation.Required),
		validation.Field(&c.Console.PrefsBackend, validation.Required, validation.In(PrefsFile, PrefsRedis)),
	); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	if err := validation.ValidateStruct(&c.Export,
		validation.Field(&c.Export.Concurrency, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if c.App.Environment == EnvProduction {
		if c.OIDC.PublicKey == "" {
			return fmt.Errorf("OIDC_PUBLIC_KEY must be set in production")
		}
		if c.MinIO.AccessKey == "minioadmin" {
			return fmt.Errorf("MINIO_ACCESS_KEY must be set in production")
		}
	}

	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func defaultConsoleDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".idservices-admin"
	}
	return filepath.Join(dir, "idservices-admin")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
