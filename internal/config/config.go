package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thedittmer/briefly/internal/logger"
)

const (
	DefaultPageSize  = 5
	DefaultNotifyTTL = 3 * time.Second
	EnvPrefix        = "BRIEFLY"
)

type Config struct {
	DataDir string `mapstructure:"data_dir"`

	Theme struct {
		Dark        bool   `mapstructure:"dark"`
		AccentColor string `mapstructure:"accent_color"`
	} `mapstructure:"theme"`

	Backend struct {
		BaseURL   string        `mapstructure:"base_url"`
		Language  string        `mapstructure:"language"`
		CSRFToken string        `mapstructure:"csrf_token"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`

	Behavior struct {
		PageSize     int           `mapstructure:"page_size"`
		NotifyTTL    time.Duration `mapstructure:"notify_ttl"`
		DirectSearch bool          `mapstructure:"direct_search"`
		FeedURL      string        `mapstructure:"feed_url"`
	} `mapstructure:"behavior"`

	Display struct {
		CompactView bool `mapstructure:"compact_view"`
		Width       int  `mapstructure:"width"`
	} `mapstructure:"display"`

	Keyboard struct {
		NextPage  string `mapstructure:"next_page"`
		PrevPage  string `mapstructure:"prev_page"`
		NewSearch string `mapstructure:"new_search"`
		ExportCSV string `mapstructure:"export_csv"`
		Sheets    string `mapstructure:"export_sheets"`
		Quit      string `mapstructure:"quit"`
	} `mapstructure:"keyboard"`

	Sheets struct {
		CredentialsFile string `mapstructure:"credentials_file"`
		SpreadsheetID   string `mapstructure:"spreadsheet_id"`
		FolderID        string `mapstructure:"folder_id"`
	} `mapstructure:"sheets"`

	Log logger.Config `mapstructure:"log"`
}

// DefaultDataDir is ~/.briefly, or ./.briefly when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".briefly"
	}
	return filepath.Join(home, ".briefly")
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir())

	v.SetDefault("theme.dark", true)
	v.SetDefault("theme.accent_color", "#2DA44E")

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.language", "en")
	v.SetDefault("backend.csrf_token", "")
	v.SetDefault("backend.timeout", "30s")

	v.SetDefault("behavior.page_size", DefaultPageSize)
	v.SetDefault("behavior.notify_ttl", DefaultNotifyTTL.String())
	v.SetDefault("behavior.direct_search", false)
	v.SetDefault("behavior.feed_url", "https://news.google.com/rss/search")

	v.SetDefault("display.compact_view", false)
	v.SetDefault("display.width", 0)

	v.SetDefault("keyboard.next_page", "n")
	v.SetDefault("keyboard.prev_page", "p")
	v.SetDefault("keyboard.new_search", "s")
	v.SetDefault("keyboard.export_csv", "e")
	v.SetDefault("keyboard.export_sheets", "x")
	v.SetDefault("keyboard.quit", "q")

	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.folder_id", "")

	def := logger.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.format", def.Format)
	v.SetDefault("log.output", def.Output)
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.maxsize", def.File.MaxSize)
	v.SetDefault("log.file.maxage", def.File.MaxAge)
	v.SetDefault("log.file.maxbackups", def.File.MaxBackups)
	v.SetDefault("log.file.compress", def.File.Compress)
}

// LoadConfig reads defaults, the config file (if any) and BRIEFLY_* env vars.
// An explicit path that does not exist is an error; a missing default file is not.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() error {
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	c.Backend.Language = strings.Trim(c.Backend.Language, "/")

	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url must not be empty")
	}
	if c.Behavior.PageSize <= 0 {
		c.Behavior.PageSize = DefaultPageSize
	}
	if c.Behavior.NotifyTTL <= 0 {
		c.Behavior.NotifyTTL = DefaultNotifyTTL
	}
	if c.Log.File.Filename == "" {
		c.Log.File.Filename = filepath.Join(c.DataDir, "logs", "briefly.log")
	}
	if c.Sheets.CredentialsFile == "" {
		c.Sheets.CredentialsFile = filepath.Join(c.DataDir, "credentials.json")
	}

	return nil
}

// BasePath is the language-prefixed root every page endpoint hangs off.
func (c *Config) BasePath() string {
	if c.Backend.Language == "" {
		return c.Backend.BaseURL
	}
	return c.Backend.BaseURL + "/" + c.Backend.Language
}

// SaveConfig writes cfg as YAML to path, creating the directory if needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.Set("data_dir", cfg.DataDir)
	v.Set("theme.dark", cfg.Theme.Dark)
	v.Set("theme.accent_color", cfg.Theme.AccentColor)
	v.Set("backend.base_url", cfg.Backend.BaseURL)
	v.Set("backend.language", cfg.Backend.Language)
	v.Set("backend.csrf_token", cfg.Backend.CSRFToken)
	v.Set("backend.timeout", cfg.Backend.Timeout.String())
	v.Set("behavior.page_size", cfg.Behavior.PageSize)
	v.Set("behavior.notify_ttl", cfg.Behavior.NotifyTTL.String())
	v.Set("behavior.direct_search", cfg.Behavior.DirectSearch)
	v.Set("behavior.feed_url", cfg.Behavior.FeedURL)
	v.Set("display.compact_view", cfg.Display.CompactView)
	v.Set("display.width", cfg.Display.Width)
	v.Set("keyboard.next_page", cfg.Keyboard.NextPage)
	v.Set("keyboard.prev_page", cfg.Keyboard.PrevPage)
	v.Set("keyboard.new_search", cfg.Keyboard.NewSearch)
	v.Set("keyboard.export_csv", cfg.Keyboard.ExportCSV)
	v.Set("keyboard.export_sheets", cfg.Keyboard.Sheets)
	v.Set("keyboard.quit", cfg.Keyboard.Quit)
	v.Set("sheets.credentials_file", cfg.Sheets.CredentialsFile)
	v.Set("sheets.spreadsheet_id", cfg.Sheets.SpreadsheetID)
	v.Set("sheets.folder_id", cfg.Sheets.FolderID)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.output", cfg.Log.Output)
	v.Set("log.file.filename", cfg.Log.File.Filename)
	v.Set("log.file.maxsize", cfg.Log.File.MaxSize)
	v.Set("log.file.maxage", cfg.Log.File.MaxAge)
	v.Set("log.file.maxbackups", cfg.Log.File.MaxBackups)
	v.Set("log.file.compress", cfg.Log.File.Compress)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	return nil
}
