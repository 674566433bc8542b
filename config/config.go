// Package config は、charagen の設定を YAML ファイルと環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Collaborator CollaboratorConfig `mapstructure:"collaborator"`
	Gemini       GeminiConfig       `mapstructure:"gemini"`
	Output       OutputConfig       `mapstructure:"output"`
	Store        StoreConfig        `mapstructure:"store"`
	Feed         FeedConfig         `mapstructure:"feed"`
	Log          LogConfig          `mapstructure:"log"`
}

type CollaboratorConfig struct {
	// Backend は claude か gemini です。
	Backend string        `mapstructure:"backend"`
	Command string        `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeminiConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
	Model    string `mapstructure:"model"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type StoreConfig struct {
	// Kind は yaml か sqlite です。
	Kind       string `mapstructure:"kind"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type FeedConfig struct {
	URL   string `mapstructure:"url"`
	Limit int    `mapstructure:"limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default は、設定ファイルがないときに使う値です。
func Default() *Config {
	return &Config{
		Collaborator: CollaboratorConfig{
			Backend: "claude",
			Command: "claude",
			Timeout: 120 * time.Second,
		},
		Gemini: GeminiConfig{
			Location: "us-central1",
			Model:    "gemini-2.5-flash-lite",
		},
		Output: OutputConfig{Dir: "output"},
		Store: StoreConfig{
			Kind:       "yaml",
			SQLitePath: "~/.charagen/sheets.db",
		},
		Feed: FeedConfig{Limit: 5},
		Log:  LogConfig{Level: "info"},
	}
}

// DefaultPath は ~/.charagen/config.yaml です。
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".charagen", "config.yaml")
	}
	return filepath.Join(home, ".charagen", "config.yaml")
}

// Load は、path の設定ファイルを読み、環境変数で上書きします。
// ファイルがなければ既定値と環境変数だけを使います。
// 環境変数は CHARAGEN_ を前置したキー名（例: CHARAGEN_STORE_KIND）です。
// gemini.project と gemini.location は PROJECT_ID と LOCATION でも指定できます。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("CHARAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.project", "CHARAGEN_GEMINI_PROJECT", "PROJECT_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindEnv("gemini.location", "CHARAGEN_GEMINI_LOCATION", "LOCATION"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if path != "" {
		path = expandPath(path)
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			slog.Debug("config file not found, using defaults", "path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Output.Dir = expandPath(cfg.Output.Dir)
	cfg.Store.SQLitePath = expandPath(cfg.Store.SQLitePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("collaborator.backend", d.Collaborator.Backend)
	v.SetDefault("collaborator.command", d.Collaborator.Command)
	v.SetDefault("collaborator.timeout", d.Collaborator.Timeout)
	v.SetDefault("gemini.project", d.Gemini.Project)
	v.SetDefault("gemini.location", d.Gemini.Location)
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("store.kind", d.Store.Kind)
	v.SetDefault("store.sqlite_path", d.Store.SQLitePath)
	v.SetDefault("feed.url", d.Feed.URL)
	v.SetDefault("feed.limit", d.Feed.Limit)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate は、列挙値と必須の組み合わせを確認します。
func (c *Config) Validate() error {
	var errs []error
	switch c.Collaborator.Backend {
	case "claude":
	case "gemini":
		if c.Gemini.Project == "" {
			errs = append(errs, errors.New("gemini.project is required when collaborator.backend is gemini (set PROJECT_ID)"))
		}
	default:
		errs = append(errs, fmt.Errorf("collaborator.backend: unknown value %q (valid: claude, gemini)", c.Collaborator.Backend))
	}
	if c.Collaborator.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("collaborator.timeout: must be positive, got %s", c.Collaborator.Timeout))
	}
	switch c.Store.Kind {
	case "yaml", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store.kind: unknown value %q (valid: yaml, sqlite)", c.Store.Kind))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel は、log.level を slog.Level に変換します。
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
