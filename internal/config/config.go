package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const configFile = "config.json"

// Config holds console settings. The JSON file is written by `bizdesk login`;
// environment variables override it.
type Config struct {
	APIURL         string        `json:"api_url" env:"BIZDESK_API_URL"`
	Token          string        `json:"token,omitempty" env:"BIZDESK_TOKEN"`
	Language       string        `json:"language" env:"BIZDESK_LANG"`
	DefaultCountry string        `json:"default_country" env:"BIZDESK_DEFAULT_COUNTRY"`
	Currency       string        `json:"currency" env:"BIZDESK_CURRENCY"`
	SubmitTimeout  time.Duration `json:"-" env:"BIZDESK_SUBMIT_TIMEOUT"`
	LogFile        string        `json:"log_file,omitempty" env:"BIZDESK_LOG_FILE"`
	Debug          bool          `json:"-" env:"BIZDESK_DEBUG"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		APIURL:         "http://localhost:8080",
		Language:       "en",
		DefaultCountry: "SA",
		Currency:       "SAR",
		SubmitTimeout:  30 * time.Second,
	}
}

// Dir returns the directory holding the config file and logs.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "bizdesk"), nil
}

// Load reads the config from dir, then applies .env files and environment
// overrides. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if _, err := LoadEnv([]string{".env", ".env.local"}); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return &cfg, nil
}

// LoadEnv loads the env files that exist, returning how many were read.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Save writes the config to dir.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, configFile), data, 0600)
}

// LogPath returns the log file location, defaulting to dir/bizdesk.log.
func (c *Config) LogPath(dir string) string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(dir, "bizdesk.log")
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	c.DefaultCountry = strings.ToUpper(strings.TrimSpace(c.DefaultCountry))
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	d := Defaults()
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.DefaultCountry == "" {
		c.DefaultCountry = d.DefaultCountry
	}
	if c.Currency == "" {
		c.Currency = d.Currency
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = d.SubmitTimeout
	}
}
