package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const defaultSecretKey = "change_me_in_production"

// Server contains HTTP listener and auth cookie settings.
type Server struct {
	Port         string `toml:"port"`
	SecretKey    string `toml:"secret_key"`
	CookieSecure bool   `toml:"cookie_secure"`
	Timezone     string `toml:"timezone"`
}

// Database contains the SQLite location.
type Database struct {
	Path string `toml:"path"`
}

// Logging contains log output settings.
type Logging struct {
	Mode string `toml:"mode"`
}

// Elab contains eLabFTW connection settings. The API key is per user and
// lives in the database, not here.
type Elab struct {
	BaseURL        string   `toml:"base_url"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	CategoryID     int      `toml:"category_id"`
	Tags           []string `toml:"tags"`
}

type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Logging  Logging  `toml:"logging"`
	Elab     Elab     `toml:"elabftw"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:      "8080",
			SecretKey: defaultSecretKey,
			Timezone:  "UTC",
		},
		Database: Database{
			Path: filepath.Join("data", "kombucha_eln.db"),
		},
		Logging: Logging{
			Mode: "development",
		},
		Elab: Elab{
			BaseURL:        "https://elabftw.lsfm.zhaw.ch/api/v2",
			TimeoutSeconds: 30,
			Tags:           []string{"KombuchaELN", "API"},
		},
	}
}

// Load reads the TOML file at path (when it exists), then applies environment
// overrides and validates the result. An empty path falls back to ELN_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = os.Getenv("ELN_CONFIG")
	}
	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Server.SecretKey, "SECRET_KEY")
	overrideString(&cfg.Server.Timezone, "TZ")
	overrideString(&cfg.Database.Path, "DB_PATH")
	overrideString(&cfg.Logging.Mode, "LOG_MODE")
	overrideString(&cfg.Elab.BaseURL, "ELABFTW_BASE_URL")
	if raw := strings.TrimSpace(os.Getenv("COOKIE_SECURE")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.Server.CookieSecure = parsed
		}
	}
}

func overrideString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func (cfg *Config) normalize() {
	cfg.Server.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Server.Port), ":")
	cfg.Elab.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Elab.BaseURL), "/")
	if cfg.Elab.TimeoutSeconds <= 0 {
		cfg.Elab.TimeoutSeconds = 30
	}
}

func (cfg Config) Validate() error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.Server.SecretKey) == "" {
		return errors.New("server.secret_key is required")
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	if cfg.Elab.BaseURL != "" && !strings.HasPrefix(cfg.Elab.BaseURL, "http://") && !strings.HasPrefix(cfg.Elab.BaseURL, "https://") {
		return fmt.Errorf("elabftw.base_url must be an http(s) URL: %q", cfg.Elab.BaseURL)
	}
	return nil
}

// UsesDefaultSecret reports whether the signing secret was never changed.
func (cfg Config) UsesDefaultSecret() bool {
	return cfg.Server.SecretKey == defaultSecretKey
}

func (cfg Config) Location() *time.Location {
	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

func (cfg Config) ElabTimeout() time.Duration {
	return time.Duration(cfg.Elab.TimeoutSeconds) * time.Second
}

// SampleConfig returns an annotated example configuration file.
func SampleConfig() string {
	return sampleConfig
}
