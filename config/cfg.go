package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"

	validator "github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// RewriteConfig mirrors rewrite.Options for what could be expressed in
	// YAML. Function based modes and filters are only available from code.
	RewriteConfig struct {
		URL          string `yaml:"url" validate:"required,oneof=rebase inline copy"`
		MaxSize      int    `yaml:"max_size" validate:"gte=0"`
		Fallback     string `yaml:"fallback" validate:"omitempty,oneof=copy"`
		BasePath     string `yaml:"base_path"`
		Filter       string `yaml:"filter"`
		FilterRegexp string `yaml:"filter_regexp"`
		AssetsPath   string `yaml:"assets_path"`
		UseHash      bool   `yaml:"use_hash"`
		// Imports enables inlining of local @import statements before
		// rewriting so urls in imported files resolve against their own
		// directory.
		Imports bool `yaml:"imports"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Rewrite   RewriteConfig  `yaml:"rewrite"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(additionalChecks)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// additionalChecks validates what cannot be expressed with tags: filters
// are mutually exclusive and must compile.
func additionalChecks(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	rw := cfg.Rewrite
	if rw.Filter != "" && rw.FilterRegexp != "" {
		sl.ReportError(rw.FilterRegexp, "FilterRegexp", "filter_regexp", "excluded_with", "Filter")
	}
	if rw.Filter != "" {
		if _, err := glob.Compile(rw.Filter, '/'); err != nil {
			sl.ReportError(rw.Filter, "Filter", "filter", "glob", "")
		}
	}
	if rw.FilterRegexp != "" {
		if _, err := regexp.Compile(rw.FilterRegexp); err != nil {
			sl.ReportError(rw.FilterRegexp, "FilterRegexp", "filter_regexp", "regexp", "")
		}
	}
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
