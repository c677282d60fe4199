// Package config loads threat-globe settings from defaults, an optional YAML
// file and THREATGLOBE_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/sources"
	"github.com/sudorandom/threat-globe/pkg/threat"
)

const (
	// EnvPrefix marks the environment variables read by Load. Nested keys are
	// separated by a double underscore, e.g. THREATGLOBE_CLUSTER__THRESHOLD_KM.
	EnvPrefix = "THREATGLOBE_"

	// PathEnvVar names a config file when no path is given explicitly.
	PathEnvVar = "THREATGLOBE_CONFIG"
)

// DefaultPaths are searched in order when neither a path nor PathEnvVar is set.
var DefaultPaths = []string{
	"threat-globe.yaml",
	"threat-globe.yml",
	"/etc/threat-globe/config.yaml",
}

type Config struct {
	Log      logging.Config     `koanf:"log"`
	Server   ServerConfig       `koanf:"server"`
	Borders  BordersConfig      `koanf:"borders"`
	Cluster  ClusterConfig      `koanf:"cluster"`
	Timeline TimelineConfig     `koanf:"timeline"`
	Render   RenderConfig       `koanf:"render"`
	Feed     sources.FeedConfig `koanf:"feed"`
}

type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	CORSOrigins  []string      `koanf:"cors_origins"`
	MaxBodyBytes int64         `koanf:"max_body_bytes" validate:"gt=0"`
}

type BordersConfig struct {
	URL string `koanf:"url" validate:"required,url"`
	// CacheDir holds fetched GeoJSON bodies across restarts. Empty disables
	// the persistent cache.
	CacheDir string `koanf:"cache_dir"`
	// CacheTTL expires cached documents. Zero keeps them until refreshed.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type ClusterConfig struct {
	ThresholdKm float64 `koanf:"threshold_km" validate:"gte=0"`
}

type TimelineConfig struct {
	Buckets       int           `koanf:"buckets" validate:"gt=0,lte=10000"`
	PlaybackSpeed float64       `koanf:"playback_speed" validate:"gt=0"`
	StepInterval  time.Duration `koanf:"step_interval" validate:"gt=0"`
}

// RenderConfig controls the PNG frames written by the render and watch commands.
type RenderConfig struct {
	Width      int    `koanf:"width" validate:"gt=0"`
	Height     int    `koanf:"height" validate:"gt=0"`
	Projection string `koanf:"projection" validate:"omitempty,oneof=mercator equal-area mollweide"`
	Scheme     string `koanf:"scheme" validate:"omitempty,oneof=default dark glow"`
	OutputDir  string `koanf:"output_dir"`
}

func Default() Config {
	return Config{
		Log: logging.DefaultConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 32 << 20,
		},
		Borders: BordersConfig{
			URL:      sources.CountryBordersURL,
			CacheTTL: 7 * 24 * time.Hour,
			Timeout:  30 * time.Second,
		},
		Cluster: ClusterConfig{ThresholdKm: 500},
		Timeline: TimelineConfig{
			Buckets:       threat.DefaultHistogramBuckets,
			PlaybackSpeed: 1,
			StepInterval:  100 * time.Millisecond,
		},
		Render: RenderConfig{
			Width:      1920,
			Height:     1080,
			Projection: "mercator",
			Scheme:     "default",
			OutputDir:  "frames",
		},
		Feed: sources.FeedConfig{
			Type:     sources.FeedStatic,
			Interval: sources.DefaultPollInterval,
		},
	}
}

// sliceKeys arrive from the environment as comma separated strings.
var sliceKeys = []string{"server.cors_origins"}

var validate = validator.New()

// Load reads the configuration. An empty path falls back to PathEnvVar and
// then DefaultPaths; a missing file is not an error unless path was given.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Log.Output = os.Stderr
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and returns every violation in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(msgs, "; "))
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps THREATGLOBE_BORDERS__CACHE_DIR to borders.cache_dir.
func envKey(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	if key == "CONFIG" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}
