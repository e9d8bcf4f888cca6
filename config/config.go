// Package config loads the commonizer configuration from a TOML file,
// COMMONIZER_* environment variables and key=value overrides, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/joho/godotenv"

	"github.com/broady/commonizer/classifiers"
	"github.com/broady/commonizer/engine"
	"github.com/broady/commonizer/provider"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COMMONIZER_"

// Defaults.
const (
	DefaultOutDir    = "build/commonizer"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

var (
	validate      = validator.New(validator.WithRequiredStructEnabled())
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.SetAliasTag("toml")
}

// Config is the configuration of one commonizer run.
type Config struct {
	// Platforms are the compilation targets, in canonical order.
	Platforms []Platform `toml:"platforms" validate:"min=1,unique=Name,dive"`

	// Packages are the Go package patterns loaded from source. Unused when
	// every platform has a manifest.
	Packages []string `toml:"packages"`

	// StandardNamespaces are package prefixes shared by every platform.
	StandardNamespaces []string `toml:"standard_namespaces"`

	// OutDir receives the report files.
	OutDir string `toml:"out_dir" validate:"required"`

	// Concurrency bounds the groups commonized in parallel.
	Concurrency int `toml:"concurrency" validate:"gte=0"`

	// NamespaceMemoSize bounds the namespace answers remembered per run.
	NamespaceMemoSize int `toml:"namespace_memo_size" validate:"gte=0"`

	LogLevel  string `toml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `toml:"log_format" validate:"oneof=text json"`
}

// Platform is one compilation target.
type Platform struct {
	Name     string   `toml:"name" validate:"required"`
	GOOS     string   `toml:"goos"`
	GOARCH   string   `toml:"goarch"`
	Tags     []string `toml:"tags"`
	Manifest string   `toml:"manifest"`
}

// Load reads the file at path (skipped when empty), then applies the
// process environment and overrides, fills defaults and validates the
// result. Relative manifest and output paths are resolved against the
// directory of path.
func Load(path string, environ []string, overrides []string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := ApplyEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}

	cfg = applyDefaults(cfg)
	if path != "" {
		cfg.resolvePaths(filepath.Dir(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// envKeys lists the keys settable from the environment. List keys take a
// comma-separated value.
var envKeys = map[string]bool{
	"packages":            true,
	"standard_namespaces": true,
	"out_dir":             false,
	"concurrency":         false,
	"namespace_memo_size": false,
	"log_level":           false,
	"log_format":          false,
}

// ApplyEnv applies COMMONIZER_* variables from environ, given in
// os.Environ form. Variables for unknown keys are ignored.
func ApplyEnv(cfg *Config, environ []string) error {
	values := url.Values{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		list, known := envKeys[key]
		if !known {
			continue
		}
		if list {
			for _, item := range strings.Split(value, ",") {
				if item = strings.TrimSpace(item); item != "" {
					values.Add(key, item)
				}
			}
			continue
		}
		values.Set(key, value)
	}
	if len(values) == 0 {
		return nil
	}
	if err := schemaDecoder.Decode(cfg, values); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	return nil
}

// ApplyOverrides applies key=value pairs, as given to --set. Keys use the
// TOML names; platform fields are addressed by index, e.g.
// "platforms.1.goarch=arm64". Repeating a list key collects its values.
func ApplyOverrides(cfg *Config, overrides []string) error {
	values := url.Values{}
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid override %q: expected key=value", o)
		}
		values.Add(key, value)
	}
	if len(values) == 0 {
		return nil
	}
	if err := schemaDecoder.Decode(cfg, values); err != nil {
		return fmt.Errorf("failed to apply overrides: %w", err)
	}
	return nil
}

// applyDefaults applies default values to Config.
func applyDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg
	result.Platforms = slices.Clone(cfg.Platforms)

	if result.OutDir == "" {
		result.OutDir = DefaultOutDir
	}
	if result.Concurrency == 0 {
		result.Concurrency = engine.DefaultConcurrency
	}
	if result.NamespaceMemoSize == 0 {
		result.NamespaceMemoSize = classifiers.DefaultMemoSize
	}
	if result.LogLevel == "" {
		result.LogLevel = DefaultLogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = DefaultLogFormat
	}
	for i := range result.Platforms {
		p := &result.Platforms[i]
		if p.Name == "" && p.GOOS != "" && p.GOARCH != "" {
			p.Name = p.GOOS + "_" + p.GOARCH
		}
	}
	return &result
}

func (c *Config) resolvePaths(dir string) {
	if !filepath.IsAbs(c.OutDir) {
		c.OutDir = filepath.Join(dir, c.OutDir)
	}
	for i := range c.Platforms {
		p := &c.Platforms[i]
		if p.Manifest != "" && !filepath.IsAbs(p.Manifest) {
			p.Manifest = filepath.Join(dir, p.Manifest)
		}
	}
}

// Validate checks the field constraints and that the platforms agree on
// their input: either all of them name a manifest, or none does and
// packages are given.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	manifests := 0
	for _, p := range c.Platforms {
		if p.Manifest != "" {
			manifests++
		}
	}
	switch {
	case manifests == 0 && len(c.Packages) == 0:
		return errors.New("invalid config: packages is required when platforms have no manifest")
	case manifests != 0 && manifests != len(c.Platforms):
		return errors.New("invalid config: either every platform or none must have a manifest")
	}
	return nil
}

// UsesManifests reports whether declarations come from manifests rather
// than from Go source.
func (c *Config) UsesManifests() bool {
	return len(c.Platforms) > 0 && c.Platforms[0].Manifest != ""
}

// ProviderPlatforms returns the platforms in provider form.
func (c *Config) ProviderPlatforms() []provider.Platform {
	out := make([]provider.Platform, len(c.Platforms))
	for i, p := range c.Platforms {
		out[i] = provider.Platform{
			Name:     p.Name,
			GOOS:     p.GOOS,
			GOARCH:   p.GOARCH,
			Tags:     slices.Clone(p.Tags),
			Manifest: p.Manifest,
		}
	}
	return out
}

// PlatformNames returns the platform names in order.
func (c *Config) PlatformNames() []string {
	names := make([]string, len(c.Platforms))
	for i, p := range c.Platforms {
		names[i] = p.Name
	}
	return names
}
