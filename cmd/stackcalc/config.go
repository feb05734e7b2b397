package main

import (
	"os"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

// config is the calculator's settings. Fields are loaded from a YAML file and
// then overridden by any flags given on the command line.
type config struct {
	Prompt      string `yaml:"prompt"`
	Trace       bool   `yaml:"trace"`
	Echo        bool   `yaml:"echo"`
	Disassemble bool   `yaml:"disassemble"`
	Dump        bool   `yaml:"dump"`
	Promote     bool   `yaml:"promote_negative_exponents"`
	LogLevel    string `yaml:"log_level"`
	Color       bool   `yaml:"color"`
	Debug       bool   `yaml:"debug"`
}

func defaultConfig() config {
	return config{
		Prompt:   "> ",
		LogLevel: "WARNING",
	}
}

// loadConfig reads settings from the YAML file at path. An empty path gives
// the defaults. Keys missing from the file keep their default values.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, tracerr.Wrap(err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, tracerr.Wrap(err)
	}
	return cfg, nil
}

// applyFlags overrides settings with flags that were set explicitly.
func (cfg *config) applyFlags(c *cli.Context) {
	bools := []struct {
		name string
		v    *bool
	}{
		{"trace", &cfg.Trace},
		{"echo", &cfg.Echo},
		{"dis", &cfg.Disassemble},
		{"dump", &cfg.Dump},
		{"promote-neg-exp", &cfg.Promote},
		{"color", &cfg.Color},
		{"debug", &cfg.Debug},
	}
	for _, f := range bools {
		if c.IsSet(f.name) {
			*f.v = c.Bool(f.name)
		}
	}
	if c.IsSet("prompt") {
		cfg.Prompt = c.String("prompt")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}

// level returns the configured log level. Debug mode always logs at DEBUG.
func (cfg *config) level() (capnslog.LogLevel, error) {
	if cfg.Debug {
		return capnslog.DEBUG, nil
	}
	l, err := capnslog.ParseLevel(strings.ToUpper(cfg.LogLevel))
	if err != nil {
		return l, tracerr.Wrap(err)
	}
	return l, nil
}
