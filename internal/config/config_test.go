package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formbuilder.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(transfer.DefaultImportOptions(), cfg.ImportOptions()); diff != "" {
		t.Fatalf("import options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
theme_color: "#ff0000"
import:
  replace_ids: false
server:
  addr: ":9000"
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ThemeColor != "#ff0000" || cfg.Server.Addr != ":9000" || cfg.LogLevel() != log.DebugLevel {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Import.ReplaceIDs || !cfg.Import.ValidateStructure || !cfg.Import.PreserveTheme {
		t.Fatalf("absent keys should keep their defaults: %+v", cfg.Import)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Fatalf("output dir = %q", cfg.OutputDir)
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown key", body: "colour: red\n", want: "field colour not found"},
		{name: "bad colour", body: "theme_color: red\n", want: "not a hex colour"},
		{name: "bad level", body: "log:\n  level: loud\n", want: "log.level"},
		{name: "blank addr", body: "server:\n  addr: \"\"\n", want: "server.addr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FORMBUILDER_ADDR":           ":7000",
		"FORMBUILDER_LOG_LEVEL":      " warn ",
		"FORMBUILDER_PRESERVE_THEME": "false",
		"FORMBUILDER_OUTPUT_DIR":     "",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Server.Addr != ":7000" || cfg.Log.Level != "warn" || cfg.Import.PreserveTheme {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Fatalf("blank env values must be ignored, got %q", cfg.OutputDir)
	}

	env["FORMBUILDER_REPLACE_IDS"] = "maybe"
	if err := cfg.applyEnv(lookup); err == nil {
		t.Fatalf("expected parse error for boolean override")
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("FORMBUILDER_THEME_COLOR", "#123")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ThemeColor != "#123" {
		t.Fatalf("theme colour = %q", cfg.ThemeColor)
	}
}

func TestThemeSelector(t *testing.T) {
	cfg, err := Load(writeConfig(t, "theme:\n  variant: dark\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Theme.Name != render.BuiltinTheme || cfg.Theme.Variant != render.VariantDark {
		t.Fatalf("unexpected theme %+v", cfg.Theme)
	}
	selector, err := cfg.ThemeSelector()
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Theme != render.BuiltinTheme || selection.Variant != render.VariantDark || selection.Manifest == nil {
		t.Fatalf("unexpected selection %+v", selection)
	}

	t.Setenv("FORMBUILDER_THEME_MANIFEST", filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.ThemeSelector(); err == nil || !strings.Contains(err.Error(), "config: theme") {
		t.Fatalf("expected theme error, got %v", err)
	}
}
