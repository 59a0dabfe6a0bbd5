// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present and no explicit file is given.
const DefaultEnvFile = ".env"

// Config holds every setting the server reads at startup.
// The defaults reproduce the public contract: port 8000 and a single
// allowed origin for the local frontend.
type Config struct {
	// Environment names the deployment (development, production, ...).
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	// LogLevel is the minimum zap level that is written.
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	// ProjectID enables Cloud Trace correlation fields in logs.
	ProjectID string `env:"GOOGLE_CLOUD_PROJECT"`

	HTTP struct {
		Port              string        `env:"PORT"                     env-default:"8000"`
		ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT"        env-default:"5s"`
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"2s"`
		WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT"       env-default:"10s"`
		IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT"        env-default:"60s"`
		MaxHeaderBytes    int           `env:"HTTP_MAX_HEADER_BYTES"    env-default:"65536"`
		MaxBodyBytes      int64         `env:"HTTP_MAX_BODY_BYTES"      env-default:"1048576"`
		ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    env-default:"10s"`
	}

	CORS struct {
		// AllowedOrigins is a comma separated list of origins that may read responses.
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
		// MaxAge is how long, in seconds, browsers may cache a preflight result.
		MaxAge int `env:"CORS_MAX_AGE" env-default:"600"`
	}

	Metrics struct {
		Enabled bool   `env:"METRICS_ENABLED" env-default:"false"`
		Path    string `env:"METRICS_PATH"    env-default:"/metrics"`
	}
}

// Addr returns the listen address for http.Server.
func (c *Config) Addr() string {
	return ":" + c.HTTP.Port
}

// Load reads an optional dotenv file, then the process environment.
// Variables already set in the environment win over the file. An explicit
// envFile must exist; the default .env is skipped when missing.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", DefaultEnvFile, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.HTTP.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.HTTP.Port)
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	// Browsers refuse a wildcard origin on credentialed responses.
	if slices.Contains(c.CORS.AllowedOrigins, "*") {
		return errors.New("CORS_ALLOWED_ORIGINS cannot contain * while credentials are allowed")
	}
	if c.CORS.MaxAge < 0 {
		return fmt.Errorf("invalid CORS_MAX_AGE %d", c.CORS.MaxAge)
	}
	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("METRICS_PATH must start with /, got %q", c.Metrics.Path)
		}
		if reservedPath(c.Metrics.Path) {
			return fmt.Errorf("METRICS_PATH %q collides with a served route", c.Metrics.Path)
		}
	}
	return nil
}

// Paths owned by the API and its docs.
var (
	reservedPaths    = []string{"/", "/health", "/api/hello"}
	reservedPrefixes = []string{"/docs", "/openapi", "/schemas"}
)

func reservedPath(p string) bool {
	if slices.Contains(reservedPaths, strings.TrimSuffix(p, "/")) || p == "/" {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") || strings.HasPrefix(p, prefix+".") {
			return true
		}
	}
	return false
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
