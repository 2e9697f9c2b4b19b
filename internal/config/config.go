// Package config loads the CLI configuration. The file itself is checked
// with a goshape schema, which also supplies every default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/reoring/goshape"
	"github.com/reoring/goshape/source"
)

// Config is the projected configuration.
type Config struct {
	Log    LogConfig    `json:"log"`
	Decode DecodeConfig `json:"decode"`
	// Output is "yaml" or "json".
	Output string `json:"output"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level     string `json:"level"`
	Format    string `json:"format"`
	AddSource bool   `json:"add_source"`
}

// DecodeConfig configures input decoding.
type DecodeConfig struct {
	Strict   bool  `json:"strict"`
	MaxDepth int   `json:"max_depth"`
	MaxBytes int64 `json:"max_bytes"`
}

// SourceOptions converts the decode section into source.Options.
func (d DecodeConfig) SourceOptions() source.Options {
	return source.Options{Strict: d.Strict, MaxDepth: d.MaxDepth, MaxBytes: d.MaxBytes}
}

var (
	logLevel  = goshape.MustEnum("LogLevel", "debug", "info", "warn", "warning", "error")
	logFormat = goshape.MustEnum("LogFormat", "text", "json")
	output    = goshape.MustValueEnum("Output", goshape.Value("YAML", "yaml"), goshape.Value("JSON", "json"))
)

var logSection = goshape.Named("LogConfig").MustBind(goshape.Record().
	Field("level", logLevel).Default(member(logLevel.Lookup("info"))).
	Field("format", logFormat).Default(member(logFormat.Lookup("text"))).
	Field("add_source", goshape.Bool).Default(false))

var decodeSection = goshape.Named("DecodeConfig").MustBind(goshape.Record().
	Field("strict", goshape.Bool).Default(false).
	Field("max_depth", goshape.Int).Default(0).
	Field("max_bytes", goshape.Int).Default(0))

// Schema describes the configuration file.
var Schema = goshape.MustCompile(goshape.Named("Config").MustBind(goshape.Record().
	Field("log", logSection).DefaultFunc(emptySection(logSection)).
	Field("decode", decodeSection).DefaultFunc(emptySection(decodeSection)).
	Field("output", output).Default(member(output.Member("YAML")))))

func member(m goshape.Member, ok bool) goshape.Member {
	if !ok {
		panic("config: unknown enum member")
	}
	return m
}

// emptySection produces an absent section's value from its own field defaults.
func emptySection(t goshape.Type) func() any {
	return func() any {
		v, err := goshape.Validate(t, map[string]any{})
		if err != nil {
			panic(err)
		}
		return v
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := build(map[string]any{})
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the YAML or JSON file at path, applies GOSHAPE_* environment
// overrides and validates the result. An empty path loads only defaults and
// environment overrides.
func Load(path string) (*Config, error) {
	raw := map[string]any{}
	if path != "" {
		v, err := source.DecodeFile(path, source.Options{Strict: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		switch t := v.(type) {
		case nil:
		case map[string]any:
			raw = t
		default:
			return nil, fmt.Errorf("configuration file %q: top level must be a mapping", path)
		}
	}
	if err := applyEnvOverrides(raw); err != nil {
		return nil, err
	}
	cfg, err := build(raw)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func build(raw map[string]any) (*Config, error) {
	out, err := Schema.Validate(raw)
	if err != nil {
		return nil, err
	}
	cfg, err := goshape.As[Config](out)
	if err != nil {
		return nil, err
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	return &cfg, nil
}

type envVar struct {
	name    string
	section string
	field   string
	parse   func(string) (any, error)
}

func asString(s string) (any, error) { return s, nil }

func asBool(s string) (any, error) { return strconv.ParseBool(s) }

func asInt(s string) (any, error) { return strconv.ParseInt(s, 10, 64) }

var envVars = []envVar{
	{"GOSHAPE_LOG_LEVEL", "log", "level", asString},
	{"GOSHAPE_LOG_FORMAT", "log", "format", asString},
	{"GOSHAPE_LOG_ADD_SOURCE", "log", "add_source", asBool},
	{"GOSHAPE_DECODE_STRICT", "decode", "strict", asBool},
	{"GOSHAPE_DECODE_MAX_DEPTH", "decode", "max_depth", asInt},
	{"GOSHAPE_DECODE_MAX_BYTES", "decode", "max_bytes", asInt},
	{"GOSHAPE_OUTPUT", "", "output", asString},
}

// applyEnvOverrides writes set GOSHAPE_SECTION_FIELD variables into the raw
// tree so that they pass through the same validation as the file.
func applyEnvOverrides(raw map[string]any) error {
	var errs []error
	for _, ev := range envVars {
		s, ok := os.LookupEnv(ev.name)
		if !ok || s == "" {
			continue
		}
		v, err := ev.parse(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ev.name, err))
			continue
		}
		target := raw
		if ev.section != "" {
			switch sec := raw[ev.section].(type) {
			case nil:
				target = map[string]any{}
				raw[ev.section] = target
			case map[string]any:
				target = sec
			default:
				// left for validation to report
				continue
			}
		}
		target[ev.field] = v
	}
	return errors.Join(errs...)
}
