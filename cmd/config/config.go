package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-notion/internal/logging"
	"github.com/mattsolo1/grove-notion/pkg/button"
	"github.com/mattsolo1/grove-notion/pkg/journal"
	"github.com/mattsolo1/grove-notion/pkg/notion"
	"github.com/mattsolo1/grove-notion/pkg/service"
	"github.com/mattsolo1/grove-notion/pkg/store"
)

var cfgFile string

var envKeyReplacer = strings.NewReplacer(".", "_")

// Settings is the decoded configuration.
type Settings struct {
	NotionToken       string        `mapstructure:"notion_token"`
	NotionBaseURL     string        `mapstructure:"notion_base_url"`
	NotionVersion     string        `mapstructure:"notion_version"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	RootPageName      string        `mapstructure:"root_page_name"`
	RootPageID        string        `mapstructure:"root_page_id"`
	RunButton         string        `mapstructure:"run_button"`
	ClearButton       string        `mapstructure:"clear_button"`
	Essentials        []string      `mapstructure:"essentials"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	Store             StoreSettings `mapstructure:"store"`
	DataDir           string        `mapstructure:"data_dir"`
	LogLevel          string        `mapstructure:"log_level"`
	LogDir            string        `mapstructure:"log_dir"`
}

// StoreSettings selects the key/value backend.
type StoreSettings struct {
	Backend  string `mapstructure:"backend"`
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis_url"`
}

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "grove-notion")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("GNOTION")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	// A missing config file is fine; everything has a default or comes from the env.
	_ = viper.ReadInConfig()
}

// SetDefaults registers a default for every key so that env overrides are
// seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "grove-notion")

	v.SetDefault("notion_token", "")
	v.SetDefault("notion_base_url", notion.DefaultBaseURL)
	v.SetDefault("notion_version", notion.DefaultVersion)
	v.SetDefault("requests_per_second", notion.DefaultRequestsPerSecond)
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("root_page_name", "")
	v.SetDefault("root_page_id", "")
	v.SetDefault("run_button", service.DefaultRunButton)
	v.SetDefault("clear_button", service.DefaultClearButton)
	v.SetDefault("essentials", service.DefaultEssentials)
	v.SetDefault("poll_interval", button.DefaultInterval)
	v.SetDefault("store.backend", store.BackendFile)
	v.SetDefault("store.path", filepath.Join(dataDir, "user.conf"))
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &s, nil
}

// Runtime bundles what the commands work with.
type Runtime struct {
	Settings *Settings
	Logger   *logging.Logger
	Service  *service.Service
}

// Close releases the service and the log file.
func (r *Runtime) Close() error {
	var err error
	if r.Service != nil {
		err = r.Service.Close()
	}
	if r.Logger != nil {
		if cerr := r.Logger.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// InitRuntime builds the logger, the API client, the store, the journal and
// the service from the global configuration.
func InitRuntime() (*Runtime, error) {
	settings, err := Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return NewRuntime(settings)
}

// NewRuntime is InitRuntime for explicit settings.
func NewRuntime(settings *Settings) (*Runtime, error) {
	if settings.NotionToken == "" {
		return nil, fmt.Errorf("notion_token is not set (config file or GNOTION_NOTION_TOKEN)")
	}

	logger, err := logging.New(logging.Options{Level: settings.LogLevel, Dir: settings.LogDir})
	if err != nil {
		return nil, err
	}

	client := notion.NewClient(settings.NotionToken,
		notion.WithBaseURL(settings.NotionBaseURL),
		notion.WithVersion(settings.NotionVersion),
		notion.WithRateLimit(settings.RequestsPerSecond),
		notion.WithHTTPClient(&http.Client{Timeout: settings.HTTPTimeout}),
	)

	st, err := store.Open(store.Options{
		Backend:  settings.Store.Backend,
		Path:     settings.Store.Path,
		RedisURL: settings.Store.RedisURL,
	})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	j, err := journal.Open(settings.DataDir)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	svc := service.New(&service.Config{
		RootPageName: settings.RootPageName,
		RootPageID:   settings.RootPageID,
		RunButton:    settings.RunButton,
		ClearButton:  settings.ClearButton,
		Essentials:   settings.Essentials,
		PollInterval: settings.PollInterval,
	}, client, st, j, logger.WithField("module", "main"))

	return &Runtime{Settings: settings, Logger: logger, Service: svc}, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/grove-notion/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "console log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
}
