// Package config loads the formbuilder CLI settings. Values are layered:
// built-in defaults, then an optional YAML file, then FORMBUILDER_*
// environment variables. Command flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMBUILDER_"

// Defaults.
const (
	DefaultAddr      = "127.0.0.1:8080"
	DefaultLogLevel  = "info"
	DefaultOutputDir = "."
)

type Config struct {
	ThemeColor string       `yaml:"theme_color"`
	OutputDir  string       `yaml:"output_dir"`
	Theme      ThemeConfig  `yaml:"theme"`
	Import     ImportConfig `yaml:"import"`
	Server     ServerConfig `yaml:"server"`
	Log        LogConfig    `yaml:"log"`
}

// ThemeConfig picks the go-theme manifest and variant used by the HTML
// surfaces. Manifest optionally names an extra JSON or YAML manifest file
// registered next to the bundled themes.
type ThemeConfig struct {
	Name     string `yaml:"name"`
	Variant  string `yaml:"variant"`
	Manifest string `yaml:"manifest"`
}

type ImportConfig struct {
	ReplaceIDs        bool `yaml:"replace_ids"`
	ValidateStructure bool `yaml:"validate_structure"`
	PreserveTheme     bool `yaml:"preserve_theme"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Action overrides the submit URL of the public surface.
	Action string `yaml:"action"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	opts := transfer.DefaultImportOptions()
	return Config{
		ThemeColor: model.DefaultThemeColor,
		OutputDir:  DefaultOutputDir,
		Theme:      ThemeConfig{Name: render.BuiltinTheme, Variant: render.VariantLight},
		Import: ImportConfig{
			ReplaceIDs:        opts.ReplaceIDs,
			ValidateStructure: opts.ValidateStructure,
			PreserveTheme:     opts.PreserveTheme,
		},
		Server: ServerConfig{Addr: DefaultAddr},
		Log:    LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		defer file.Close()
		if err := Decode(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges YAML from r into cfg. Keys absent from the document keep the
// values already in cfg; unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"THEME_COLOR": &c.ThemeColor,
		"OUTPUT_DIR":  &c.OutputDir,
		"ADDR":        &c.Server.Addr,
		"ACTION":      &c.Server.Action,
		"LOG_LEVEL":   &c.Log.Level,

		"THEME":          &c.Theme.Name,
		"THEME_VARIANT":  &c.Theme.Variant,
		"THEME_MANIFEST": &c.Theme.Manifest,
	}
	for key, target := range strs {
		if value, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	bools := map[string]*bool{
		"REPLACE_IDS":        &c.Import.ReplaceIDs,
		"VALIDATE_STRUCTURE": &c.Import.ValidateStructure,
		"PRESERVE_THEME":     &c.Import.PreserveTheme,
	}
	for key, target := range bools {
		value, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*target = parsed
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.ThemeColor != "" && model.NormalizeThemeColor(c.ThemeColor) != strings.TrimSpace(c.ThemeColor) {
		return fmt.Errorf("config: theme_color %q is not a hex colour", c.ThemeColor)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	return nil
}

// ImportOptions converts the import section for transfer.DeserializeForm.
func (c Config) ImportOptions() transfer.ImportOptions {
	return transfer.ImportOptions{
		ReplaceIDs:        c.Import.ReplaceIDs,
		ValidateStructure: c.Import.ValidateStructure,
		PreserveTheme:     c.Import.PreserveTheme,
	}
}

// ThemeSelector builds the go-theme selector for the configured theme,
// loading the extra manifest when one is set.
func (c Config) ThemeSelector() (theme.Selector, error) {
	selector, err := render.NewThemeSelector(c.Theme.Name, c.Theme.Variant, c.Theme.Manifest)
	if err != nil {
		return theme.Selector{}, fmt.Errorf("config: theme: %w", err)
	}
	return selector, nil
}

// LogLevel returns the parsed log level, falling back to info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
