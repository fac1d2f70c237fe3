// Package config loads the exec-munin configuration: the environment defaults
// collectd hands to exec plugins, then the Apache-style config file on top.
package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/kballard/go-shellquote"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultPath     = "/etc/exec-munin.conf" // Config file read at startup
	DefaultInterval = 300                    // Round period when COLLECTD_INTERVAL is unset (in seconds)
	DefaultHostname = "localhost"            // Last-resort host name
)

// osHostname is swapped in tests.
var osHostname = os.Hostname

// Config holds the settings fixed for the lifetime of the process.
type Config struct {
	Types    map[string]string // Munin field name -> collectd type
	Scripts  []string          // Validated plugin paths, in config order
	Interval int               // Round period (in seconds)
	Hostname string            // Host part of every identifier
}

// TypeOf returns the collectd type for a field, or the field itself when unmapped.
func (c Config) TypeOf(field string) string {
	if t, ok := c.Types[field]; ok {
		return t
	}
	return field
}

// ShapeError reports an option whose value is not a string or a list of strings,
// or whose text cannot be used. The option is skipped.
type ShapeError struct {
	Option string
	Value  any
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("option %q: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("option %q: cannot handle value of type %T", e.Option, e.Value)
}

// ScriptError reports a configured script that was dropped at load time.
type ScriptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %q %s", e.Path, e.Reason)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// Load builds the process configuration from the environment and the file at
// path. Non-fatal problems are logged as warnings; only a *LoadError is returned.
func Load(path string, logger *zap.SugaredLogger) (Config, error) {
	cfg := Defaults(logger)

	opts, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err = Interpret(opts, cfg)
	for _, e := range multierr.Errors(err) {
		logger.Warn(e)
	}
	return cfg, nil
}

// Defaults returns the configuration before the config file is applied.
func Defaults(logger *zap.SugaredLogger) Config {
	cfg := Config{
		Types:    map[string]string{},
		Interval: DefaultInterval,
		Hostname: DefaultHostname,
	}
	if h, err := osHostname(); err == nil && h != "" {
		cfg.Hostname = h
	}
	readEnvironment(&cfg, logger)
	return cfg
}

func readEnvironment(cfg *Config, logger *zap.SugaredLogger) {
	// collectd exports the interval as a float, e.g. "10.000".
	if intervalEnv := os.Getenv("COLLECTD_INTERVAL"); intervalEnv != "" {
		v, err := strconv.ParseFloat(intervalEnv, 64)
		if err == nil && int(v) > 0 {
			cfg.Interval = int(v)
		} else {
			logger.Warnf("invalid COLLECTD_INTERVAL env var: %q", intervalEnv)
		}
	}

	if host := os.Getenv("COLLECTD_HOSTNAME"); host != "" {
		cfg.Hostname = host
	}
}

// Interpret applies the addtype, script and interval options to base. The
// returned error combines every skipped option and dropped script; the
// returned Config is usable either way.
func Interpret(opts Options, base Config) (Config, error) {
	cfg := base
	cfg.Types = maps.Clone(base.Types)
	if cfg.Types == nil {
		cfg.Types = map[string]string{}
	}
	cfg.Scripts = slices.Clone(base.Scripts)

	var errs error

	addTypes, err := entries(opts, "addtype")
	errs = multierr.Append(errs, err)
	for _, entry := range addTypes {
		errs = multierr.Append(errs, addType(cfg.Types, entry))
	}

	scripts, err := entries(opts, "script")
	errs = multierr.Append(errs, err)
	for _, path := range scripts {
		if err := checkScript(path); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		cfg.Scripts = append(cfg.Scripts, path)
	}

	intervals, err := entries(opts, "interval")
	errs = multierr.Append(errs, err)
	for _, s := range intervals {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.Interval = v
		}
	}

	return cfg, errs
}

// entries returns the values of an option that may be absent, a single
// string, or a list of strings.
func entries(opts Options, key string) ([]string, error) {
	v, ok := opts[key]
	if !ok {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &ShapeError{Option: key, Value: item}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &ShapeError{Option: key, Value: v}
	}
}

// addType parses "<type> <field> [<field> ...]" into types.
func addType(types map[string]string, entry string) error {
	fields, err := shellquote.Split(entry)
	if err != nil {
		return &ShapeError{Option: "addtype", Value: entry, Reason: fmt.Sprintf("%q: %v", entry, err)}
	}
	if len(fields) < 2 {
		return &ShapeError{Option: "addtype", Value: entry, Reason: fmt.Sprintf("%q: need a type and at least one field", entry)}
	}
	for _, field := range fields[1:] {
		types[field] = fields[0]
	}
	return nil
}

func checkScript(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &ScriptError{Path: path, Reason: "doesn't exist", Err: err}
	}
	if err := checkExecutable(path); err != nil {
		return &ScriptError{Path: path, Reason: "exists but is not executable", Err: err}
	}
	return nil
}
