package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	rw := cfg.Rewrite
	if rw.URL != "rebase" {
		t.Errorf("URL = %q, want rebase", rw.URL)
	}
	if rw.MaxSize != 14 {
		t.Errorf("MaxSize = %d, want 14", rw.MaxSize)
	}
	if rw.Fallback != "" || rw.BasePath != "" || rw.Filter != "" || rw.FilterRegexp != "" || rw.AssetsPath != "" {
		t.Errorf("expected empty optional values, got %+v", rw)
	}
	if rw.UseHash {
		t.Error("UseHash should be off by default")
	}
	if !rw.Imports {
		t.Error("Imports should be on by default")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
rewrite:
  url: copy
  assets_path: assets
  use_hash: true
  filter: "**/*.png"
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Rewrite.URL != "copy" {
		t.Errorf("URL = %q, want copy", cfg.Rewrite.URL)
	}
	if cfg.Rewrite.AssetsPath != "assets" || !cfg.Rewrite.UseHash {
		t.Errorf("copy settings not loaded: %+v", cfg.Rewrite)
	}
	if cfg.Rewrite.Filter != "**/*.png" {
		t.Errorf("Filter = %q", cfg.Rewrite.Filter)
	}
	// values absent from the file come from defaults
	if cfg.Rewrite.MaxSize != 14 {
		t.Errorf("MaxSize = %d, want default 14", cfg.Rewrite.MaxSize)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nrewrite:\n  url: copy\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"wrong version", "version: 2\n"},
		{"unknown mode", "version: 1\nrewrite:\n  url: embed\n"},
		{"unknown fallback", "version: 1\nrewrite:\n  fallback: inline\n"},
		{"negative size", "version: 1\nrewrite:\n  max_size: -1\n"},
		{"both filters", "version: 1\nrewrite:\n  filter: \"*.png\"\n  filter_regexp: \"png$\"\n"},
		{"bad glob", "version: 1\nrewrite:\n  filter: \"[a-\"\n"},
		{"bad regexp", "version: 1\nrewrite:\n  filter_regexp: \"(\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Rewrite: RewriteConfig{
			URL:      "inline",
			MaxSize:  32,
			Fallback: "copy",
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Rewrite != cfg.Rewrite {
		t.Errorf("Rewrite mismatch after dump/load: got %+v, want %+v", cfg2.Rewrite, cfg.Rewrite)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	data := []byte("version: 99\n")

	_, err := unmarshalConfig(data, &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got bare error: %v", err)
	}
}

func TestPanicLogName(t *testing.T) {
	conf := LoggingConfig{FileLogger: LoggerConfig{Destination: filepath.Join("logs", "run.log")}}
	if got, want := conf.PanicLogName(), filepath.Join("logs", "cssurl-panic.log"); got != want {
		t.Errorf("PanicLogName() = %q, want %q", got, want)
	}
}

func TestLoggingPrepare_ConsoleOnly(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if log == nil {
		t.Fatal("Prepare() returned nil logger")
	}
	log.Info("discarded")
}
