package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/marcus/bizdesk/internal/api"
	"github.com/marcus/bizdesk/internal/config"
	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/logging"
)

// settingsFlags are shared by every command that talks to the backend.
func settingsFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("settings", pflag.ContinueOnError)
	fs.String("config-dir", "", "Directory holding config.json (default: user config dir)")
	fs.String("api-url", "", "Backend base URL")
	fs.String("token", "", "API token")
	fs.String("lang", "", "Interface language (en, ar)")
	fs.Bool("debug", false, "Log at debug level")
	return fs
}

// settings is the resolved configuration for one command run.
type settings struct {
	dir string
	cfg *config.Config
	log *zap.Logger
}

// loadSettings reads the config file and environment, then applies flags.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("config-dir")
	if dir == "" {
		d, err := config.Dir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		dir = d
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(flags, cfg)

	if _, ok := intl.LookupLanguage(cfg.Language); !ok {
		return nil, fmt.Errorf("unsupported language %q", cfg.Language)
	}

	log, err := logging.New(logging.Options{Path: cfg.LogPath(dir), Debug: cfg.Debug})
	if err != nil {
		return nil, err
	}
	return &settings{dir: dir, cfg: cfg, log: log}, nil
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("api-url") {
		cfg.APIURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("token") {
		cfg.Token, _ = flags.GetString("token")
	}
	if flags.Changed("lang") {
		cfg.Language, _ = flags.GetString("lang")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
}

// client returns an API client for the resolved settings.
func (s *settings) client() (*api.Client, error) {
	if s.cfg.Token == "" {
		return nil, fmt.Errorf("not logged in: run 'bizdesk login' or set BIZDESK_TOKEN")
	}
	return api.New(s.cfg.APIURL, s.cfg.Token, api.WithLogger(s.log))
}

func (s *settings) translator() *intl.Translator {
	t, err := intl.New(s.cfg.Language)
	if err != nil {
		return intl.MustNew("en")
	}
	return t
}

func (s *settings) close() {
	_ = s.log.Sync()
}
