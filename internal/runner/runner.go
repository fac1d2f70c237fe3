// Package runner executes Munin plugins and feeds their value lines to an emitter.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/remicollet/collectd/model"
)

// maxLineSize bounds a single line of plugin output.
const maxLineSize = 1 << 20

// sink receives the samples parsed from a plugin's output.
type sink interface {
	Emit(script string, ts int64, s model.Sample) error
}

// SpawnError reports a plugin that could not be started this round.
type SpawnError struct {
	Script string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot execute %q: %v", e.Script, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Runner executes one plugin at a time.
type Runner struct {
	sink sink
	now  func() time.Time
}

// New creates a runner that hands every parsed sample to e.
func New(e sink) *Runner {
	return &Runner{sink: e, now: time.Now}
}

// Run executes script with no arguments and emits one record per value line
// of its stdout. The plugin's stderr is discarded and its exit status ignored.
// A *SpawnError means nothing was read; any other error is reported after the
// output has been fully drained.
func (r *Runner) Run(ctx context.Context, script string) error {
	ts := r.now().Unix()

	cmd := exec.CommandContext(ctx, execPath(script))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &SpawnError{Script: script, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &SpawnError{Script: script, Err: err}
	}

	var emitErr error
	lines, scanErr := scanLines(stdout)
	for line := range lines {
		sample, ok := ParseLine(line)
		if !ok {
			continue
		}
		if err := r.sink.Emit(script, ts, sample); err != nil && emitErr == nil {
			emitErr = fmt.Errorf("emit %s from %s: %w", sample.Field, script, err)
		}
	}
	readErr := scanErr()
	if readErr != nil {
		// keep the plugin from blocking on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
		readErr = fmt.Errorf("read output of %s: %w", script, readErr)
	}

	_ = cmd.Wait()

	return errors.Join(readErr, emitErr)
}

// execPath keeps a bare file name from being looked up in $PATH. Scripts are
// validated relative to the working directory, so they run from there too.
func execPath(script string) string {
	if filepath.Base(script) == script {
		return "." + string(filepath.Separator) + script
	}
	return script
}

// scanLines yields the lines of r until it is closed. The returned func
// reports why scanning stopped, once the sequence is exhausted.
func scanLines(r io.Reader) (iter.Seq[string], func() error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	seq := func(yield func(string) bool) {
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
	}
	return seq, sc.Err
}
