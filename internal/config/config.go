// Package config resolves the formdraft CLI settings from an optional .env
// file, FORMDRAFT_* environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formdraft/pkg/rules"
	"github.com/goliatone/go-formdraft/pkg/store"
	"github.com/goliatone/go-formdraft/pkg/submit"
)

// EnvPrefix namespaces environment overrides, e.g. FORMDRAFT_ENDPOINT.
const EnvPrefix = "FORMDRAFT"

// Config holds the resolved CLI settings.
type Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	StorePath       string        `mapstructure:"store_path"`
	StoreKey        string        `mapstructure:"store_key"`
	StoreFormat     string        `mapstructure:"store_format"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RuleEngine      string        `mapstructure:"rule_engine"`
	SanitizeHTML    bool          `mapstructure:"sanitize_html"`
	ActivityChannel string        `mapstructure:"activity_channel"`
	Debug           bool          `mapstructure:"debug"`
}

// Sources names the optional files consulted by Load.
type Sources struct {
	// EnvFile is loaded with godotenv; a missing file is ignored.
	EnvFile string
	// ConfigFile is a YAML file; when empty no file is read.
	ConfigFile string
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Config {
	return Config{
		Endpoint:        submit.DefaultEndpoint,
		StorePath:       ".formdraft",
		StoreKey:        store.DefaultKey,
		StoreFormat:     "json",
		Timeout:         30 * time.Second,
		RuleEngine:      rules.EngineExpr,
		ActivityChannel: "formdraft",
	}
}

// Load resolves Config. Precedence, lowest first: defaults, config file,
// environment (including values loaded from EnvFile).
func Load(src Sources) (Config, error) {
	if src.EnvFile != "" {
		if err := godotenv.Load(src.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", src.EnvFile, err)
		}
	}

	v := New()
	if src.ConfigFile != "" {
		v.SetConfigFile(src.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", src.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	defaults := Defaults()
	v.SetDefault("endpoint", defaults.Endpoint)
	v.SetDefault("store_path", defaults.StorePath)
	v.SetDefault("store_key", defaults.StoreKey)
	v.SetDefault("store_format", defaults.StoreFormat)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("rule_engine", defaults.RuleEngine)
	v.SetDefault("sanitize_html", defaults.SanitizeHTML)
	v.SetDefault("activity_channel", defaults.ActivityChannel)
	v.SetDefault("debug", defaults.Debug)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Validate rejects settings the CLI cannot act on.
func (c Config) Validate() error {
	if _, err := store.CodecFor(c.StoreFormat); err != nil {
		return fmt.Errorf("config: store_format: %w", err)
	}
	switch strings.ToLower(c.RuleEngine) {
	case rules.EngineExpr, rules.EngineCEL, rules.EngineJS:
	default:
		return fmt.Errorf("config: rule_engine: unknown engine %q", c.RuleEngine)
	}
	if strings.TrimSpace(c.StoreKey) == "" {
		return fmt.Errorf("config: store_key is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative")
	}
	return nil
}

// WriteDefault writes a YAML config file with the default settings. It
// refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	v := New()
	v.SetConfigType("yaml")
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
