// Command agent runs Munin plugins for the collectd exec plugin.
//
// collectd starts it with COLLECTD_INTERVAL and COLLECTD_HOSTNAME set. The
// configuration is read from /etc/exec-munin.conf:
//
//	AddType voltage in out
//	AddType temperature temp
//	Script /usr/lib/munin/plugins/sensors_volt
//	Interval 300
//
// PUTVAL records go to stdout, diagnostics to stderr.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/remicollet/collectd/internal/buildinfo"
	"github.com/remicollet/collectd/internal/config"
	"github.com/remicollet/collectd/internal/emitter"
	"github.com/remicollet/collectd/internal/runner"
	"github.com/remicollet/collectd/internal/scheduler"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	logger := config.NewLogger()
	defer func() { _ = logger.Sync() }()

	buildinfo.Log(logger, buildVersion, buildDate, buildCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.DefaultPath, os.Stdout, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, path string, out io.Writer, logger *zap.SugaredLogger) error {
	cfg, err := config.Load(path, logger)
	if err != nil {
		return err
	}

	logger.Infof("exec-munin config: Interval=%d, Hostname=%q, Scripts=%d, Types=%d",
		cfg.Interval,
		cfg.Hostname,
		len(cfg.Scripts),
		len(cfg.Types),
	)

	r := runner.New(emitter.New(out, cfg))
	return scheduler.New(cfg.Scripts, cfg.Interval, r.Run, logger).Run(ctx)
}
