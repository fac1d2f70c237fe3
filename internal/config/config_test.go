package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setEnvAndRun(t *testing.T, env map[string]string, fn func()) {
	t.Helper()

	backup := map[string]string{}
	for k := range env {
		backup[k] = os.Getenv(k)
	}

	for k, v := range env {
		require.NoError(t, os.Setenv(k, v))
	}
	defer func() {
		for k := range env {
			_ = os.Unsetenv(k)
			if old, ok := backup[k]; ok && old != "" {
				_ = os.Setenv(k, old)
			}
		}
	}()

	fn()
}

func withHostname(t *testing.T, name string, err error) {
	t.Helper()
	old := osHostname
	osHostname = func() (string, error) { return name, err }
	t.Cleanup(func() { osHostname = old })
}

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, obs := observer.New(zap.WarnLevel)
	return zap.New(core).Sugar(), obs
}

func writeScript(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho load.value 1\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestReadEnvironment(t *testing.T) {
	env := map[string]string{
		"COLLECTD_INTERVAL": "10.000",
		"COLLECTD_HOSTNAME": "box.example.org",
	}

	setEnvAndRun(t, env, func() {
		logger, obs := newObservedLogger()
		cfg := &Config{Interval: DefaultInterval, Hostname: DefaultHostname}
		readEnvironment(cfg, logger)

		require.Equal(t, 10, cfg.Interval)
		require.Equal(t, "box.example.org", cfg.Hostname)
		require.Zero(t, obs.Len())
	})
}

func TestReadEnvironment_InvalidInterval(t *testing.T) {
	for _, v := range []string{"abc", "0", "-3", "0.5"} {
		t.Run(v, func(t *testing.T) {
			setEnvAndRun(t, map[string]string{"COLLECTD_INTERVAL": v}, func() {
				logger, obs := newObservedLogger()
				cfg := &Config{Interval: DefaultInterval}
				readEnvironment(cfg, logger)

				require.Equal(t, DefaultInterval, cfg.Interval)
				require.Equal(t, 1, obs.FilterMessageSnippet("COLLECTD_INTERVAL").Len())
			})
		})
	}
}

func TestDefaults_Hostname(t *testing.T) {
	t.Setenv("COLLECTD_HOSTNAME", "")
	t.Setenv("COLLECTD_INTERVAL", "")
	logger, _ := newObservedLogger()

	withHostname(t, "sysname", nil)
	cfg := Defaults(logger)
	require.Equal(t, "sysname", cfg.Hostname)
	require.Equal(t, DefaultInterval, cfg.Interval)
	require.NotNil(t, cfg.Types)

	withHostname(t, "", errors.New("no uname"))
	require.Equal(t, DefaultHostname, Defaults(logger).Hostname)

	t.Setenv("COLLECTD_HOSTNAME", "override")
	require.Equal(t, "override", Defaults(logger).Hostname)
}

func TestInterpret_AddType(t *testing.T) {
	opts, err := Parse(strings.NewReader(`
AddType voltage in out
AddType temperature temp in
AddType "if_octets" rx tx
`))
	require.NoError(t, err)

	cfg, err := Interpret(opts, Config{})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"in":   "temperature",
		"out":  "voltage",
		"temp": "temperature",
		"rx":   "if_octets",
		"tx":   "if_octets",
	}, cfg.Types)
}

func TestInterpret_AddTypeInvalidEntry(t *testing.T) {
	opts := Options{"addtype": []any{"gauge", "voltage in", `bad "quote`}}

	cfg, err := Interpret(opts, Config{})
	require.Equal(t, map[string]string{"in": "voltage"}, cfg.Types)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	for _, e := range errs {
		var se *ShapeError
		require.ErrorAs(t, e, &se)
		require.Equal(t, "addtype", se.Option)
	}
}

func TestInterpret_Scripts(t *testing.T) {
	dir := t.TempDir()
	first := writeScript(t, dir, "first", 0o755)
	plain := writeScript(t, dir, "plain", 0o644)
	second := writeScript(t, dir, "second", 0o700)
	missing := filepath.Join(dir, "missing")

	opts := Options{"script": []any{second, missing, plain, first}}
	cfg, err := Interpret(opts, Config{})

	require.Equal(t, []string{second, first}, cfg.Scripts)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var se *ScriptError
	require.ErrorAs(t, errs[0], &se)
	require.Equal(t, missing, se.Path)
	require.Equal(t, "doesn't exist", se.Reason)
	require.True(t, errors.Is(errs[0], os.ErrNotExist))

	require.ErrorAs(t, errs[1], &se)
	require.Equal(t, plain, se.Path)
	require.Equal(t, "exists but is not executable", se.Reason)
}

func TestInterpret_Interval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want int
	}{
		{"positive", "Interval 60", 60},
		{"one survives auto-true", "Interval 1", 1},
		{"zero", "Interval 0", 300},
		{"negative", "Interval -5", 300},
		{"not a number", "Interval soon", 300},
		{"float", "Interval 2.5", 300},
		{"absent", "", 300},
		{"repeated keeps last valid", "Interval 10\nInterval 20\nInterval x", 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := Parse(strings.NewReader(tc.src))
			require.NoError(t, err)

			cfg, err := Interpret(opts, Config{Interval: DefaultInterval})
			require.NoError(t, err)
			require.Equal(t, tc.want, cfg.Interval)
		})
	}
}

func TestInterpret_UnsupportedShape(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "ok", 0o755)

	opts := Options{
		"addtype":  Options{"nested": "block"},
		"script":   []any{script, Options{}},
		"interval": "30",
	}
	cfg, err := Interpret(opts, Config{Interval: DefaultInterval})

	require.Empty(t, cfg.Types)
	require.Empty(t, cfg.Scripts)
	require.Equal(t, 30, cfg.Interval)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	for _, e := range errs {
		var se *ShapeError
		require.ErrorAs(t, e, &se)
	}
	require.Contains(t, errs[0].Error(), "config.Options")
}

func TestInterpret_DoesNotMutateBase(t *testing.T) {
	base := Config{Types: map[string]string{"a": "gauge"}, Interval: 300}
	cfg, err := Interpret(Options{"addtype": "counter a"}, base)
	require.NoError(t, err)

	require.Equal(t, "counter", cfg.Types["a"])
	require.Equal(t, "gauge", base.Types["a"])
}

func TestTypeOf(t *testing.T) {
	cfg := Config{Types: map[string]string{"temp": "temperature"}}
	require.Equal(t, "temperature", cfg.TypeOf("temp"))
	require.Equal(t, "foo", cfg.TypeOf("foo"))
}

func TestLoad(t *testing.T) {
	t.Setenv("COLLECTD_INTERVAL", "")
	t.Setenv("COLLECTD_HOSTNAME", "myhost")

	dir := t.TempDir()
	script := writeScript(t, dir, "sensors", 0o755)
	conf := filepath.Join(dir, "exec-munin.conf")
	require.NoError(t, os.WriteFile(conf, []byte(
		"AddType temperature temp\n"+
			"Script "+script+"\n"+
			"Script "+filepath.Join(dir, "gone")+"\n"+
			"Interval 120\n"), 0o644))

	logger, obs := newObservedLogger()
	cfg, err := Load(conf, logger)
	require.NoError(t, err)

	require.Equal(t, Config{
		Types:    map[string]string{"temp": "temperature"},
		Scripts:  []string{script},
		Interval: 120,
		Hostname: "myhost",
	}, cfg)
	require.Equal(t, 1, obs.FilterMessageSnippet("doesn't exist").Len())
}

func TestLoad_MissingFile(t *testing.T) {
	logger, _ := newObservedLogger()
	_, err := Load(filepath.Join(t.TempDir(), "absent.conf"), logger)

	var le *LoadError
	require.ErrorAs(t, err, &le)
}
