// Package buildinfo reports the version stamped in with -ldflags.
package buildinfo

import "go.uber.org/zap"

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Log writes the build version, date and commit to logger. Stdout is not
// used: under collectd it carries metric records only.
func Log(logger *zap.SugaredLogger, version, date, commit string) {
	logger.Infof("Build version: %s", orNA(version))
	logger.Infof("Build date: %s", orNA(date))
	logger.Infof("Build commit: %s", orNA(commit))
}
