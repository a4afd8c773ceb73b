// Package config loads the configuration of a uilayer stack, using viper,
// and translates it into options for packages uilayer and streaming.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeycumines/go-uilayer"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// UILAYER_LOG_LEVEL. UILAYER_CONFIG names the config file, if no path is
// given to [Load].
const EnvPrefix = `UILAYER`

type (
	// Config holds the configuration of a uilayer stack.
	Config struct {
		Log       LogConfig       `mapstructure:"log"`
		Layout    LayoutConfig    `mapstructure:"layout"`
		Streaming StreamingConfig `mapstructure:"streaming"`
		Input     InputConfig     `mapstructure:"input"`
	}

	// LogConfig holds logger settings, see [NewLogger].
	LogConfig struct {
		// Level is a syslog keyword, e.g. "info", or "trace".
		Level string `mapstructure:"level"`
		// File is the log file, which is opened by the caller. Empty means
		// the caller's default.
		File string `mapstructure:"file"`
		// RateLimits throttle repeated warnings, per log category.
		RateLimits []RateLimit `mapstructure:"rate_limits"`
	}

	// LayoutConfig holds layout and manager settings.
	LayoutConfig struct {
		// ZOrder is the viewport z-order of attached layouts.
		ZOrder int `mapstructure:"z_order"`
		// Layers are the layers registered for each player, bottom first.
		Layers []string `mapstructure:"layers"`
	}

	// StreamingConfig holds streaming manager settings.
	StreamingConfig struct {
		// Catalog is the path of the class catalog TOML file.
		Catalog            string      `mapstructure:"catalog"`
		RateLimits         []RateLimit `mapstructure:"rate_limits"`
		MaxConcurrent      int         `mapstructure:"max_concurrent"`
		HighPriorityBypass bool        `mapstructure:"high_priority_bypass"`
	}

	// InputConfig holds push defaults.
	InputConfig struct {
		// Priority is the default resolve priority, "normal" or "high".
		Priority string `mapstructure:"priority"`
		// SuspendOnPush is whether pushes suspend input by default.
		SuspendOnPush bool `mapstructure:"suspend_on_push"`
	}

	// RateLimit allows at most Events per Window.
	RateLimit struct {
		Window time.Duration `mapstructure:"window"`
		Events int           `mapstructure:"events"`
	}
)

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: `info`,
			RateLimits: []RateLimit{
				{Window: time.Second, Events: 5},
				{Window: time.Minute, Events: 60},
			},
		},
		Layout: LayoutConfig{
			ZOrder: uilayer.DefaultZOrder,
			Layers: []string{
				string(uilayer.LayerGame),
				string(uilayer.LayerGameMenu),
				string(uilayer.LayerMenu),
				string(uilayer.LayerModal),
			},
		},
		Streaming: StreamingConfig{
			MaxConcurrent:      4,
			HighPriorityBypass: true,
		},
		Input: InputConfig{
			Priority:      `normal`,
			SuspendOnPush: true,
		},
	}
}

// Load reads configuration from the TOML file at path, and the environment.
// If path is empty, UILAYER_CONFIG is used, and if that is also empty, only
// defaults and the environment apply. An explicitly named file must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType(`toml`)
	if path == `` {
		path = os.Getenv(EnvPrefix + `_CONFIG`)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	if path != `` {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf(`config: read %q: %w`, path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf(`config: unmarshal: %w`, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes cfg to the TOML file at path, creating the directory if
// needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf(`config: mkdir: %w`, err)
	}
	v := viper.New()
	v.SetConfigType(`toml`)
	setValues(v.Set, cfg)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf(`config: write %q: %w`, path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	setValues(v.SetDefault, cfg)
}

func setValues(set func(key string, value any), cfg Config) {
	set(`log.level`, cfg.Log.Level)
	set(`log.file`, cfg.Log.File)
	if len(cfg.Log.RateLimits) != 0 {
		set(`log.rate_limits`, rateLimitValues(cfg.Log.RateLimits))
	}
	set(`layout.z_order`, cfg.Layout.ZOrder)
	set(`layout.layers`, cfg.Layout.Layers)
	set(`streaming.catalog`, cfg.Streaming.Catalog)
	if len(cfg.Streaming.RateLimits) != 0 {
		set(`streaming.rate_limits`, rateLimitValues(cfg.Streaming.RateLimits))
	}
	set(`streaming.max_concurrent`, cfg.Streaming.MaxConcurrent)
	set(`streaming.high_priority_bypass`, cfg.Streaming.HighPriorityBypass)
	set(`input.priority`, cfg.Input.Priority)
	set(`input.suspend_on_push`, cfg.Input.SuspendOnPush)
}

func rateLimitValues(limits []RateLimit) []map[string]any {
	values := make([]map[string]any, 0, len(limits))
	for _, l := range limits {
		values = append(values, map[string]any{
			`window`: l.Window.String(),
			`events`: l.Events,
		})
	}
	return values
}

// Validate checks every section, joining all errors.
func (x Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(x.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := x.LayerIDs(); err != nil {
		errs = append(errs, err)
	}
	if _, err := x.Priority(); err != nil {
		errs = append(errs, err)
	}
	if x.Streaming.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf(`config: streaming.max_concurrent must be positive, got %d`, x.Streaming.MaxConcurrent))
	}
	for _, limits := range [...]struct {
		key    string
		limits []RateLimit
	}{
		{`log.rate_limits`, x.Log.RateLimits},
		{`streaming.rate_limits`, x.Streaming.RateLimits},
	} {
		for _, l := range limits.limits {
			if l.Window <= 0 || l.Events <= 0 {
				errs = append(errs, fmt.Errorf(`config: %s: window and events must be positive, got %s/%d`, limits.key, l.Window, l.Events))
			}
		}
	}
	return errors.Join(errs...)
}

// LayerIDs parses the configured layers.
func (x Config) LayerIDs() ([]uilayer.LayerID, error) {
	ids := make([]uilayer.LayerID, 0, len(x.Layout.Layers))
	for _, s := range x.Layout.Layers {
		id, err := uilayer.ParseLayerID(s)
		if err != nil {
			return nil, fmt.Errorf(`config: layout.layers: %w`, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Priority parses the configured default priority.
func (x Config) Priority() (uilayer.Priority, error) {
	switch strings.ToLower(x.Input.Priority) {
	case ``, `normal`:
		return uilayer.PriorityNormal, nil
	case `high`:
		return uilayer.PriorityHigh, nil
	default:
		return 0, fmt.Errorf(`config: input.priority: unknown priority %q`, x.Input.Priority)
	}
}

// Rates converts limits to the form used by github.com/joeycumines/go-catrate.
// It returns nil if limits is empty.
func Rates(limits []RateLimit) map[time.Duration]int {
	if len(limits) == 0 {
		return nil
	}
	rates := make(map[time.Duration]int, len(limits))
	for _, l := range limits {
		rates[l.Window] = l.Events
	}
	return rates
}
