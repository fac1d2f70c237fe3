// Package emitter writes collectd exec-plugin PUTVAL records.
package emitter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/remicollet/collectd/internal/config"
	"github.com/remicollet/collectd/model"
)

const putvalFormat = "PUTVAL \"%s\" interval=%d %d:%s\n"

// Emitter translates Munin samples into PUTVAL lines on w.
type Emitter struct {
	w   io.Writer
	cfg config.Config
}

// New returns an emitter writing to w. Pass os.Stdout when running under collectd.
func New(w io.Writer, cfg config.Config) *Emitter {
	return &Emitter{w: w, cfg: cfg}
}

// Record resolves a sample read from script at ts.
func (e *Emitter) Record(script string, ts int64, s model.Sample) model.Record {
	return model.Record{
		Host:      e.cfg.Hostname,
		Plugin:    filepath.Base(script),
		Type:      e.cfg.TypeOf(s.Field),
		Interval:  e.cfg.Interval,
		Timestamp: ts,
		Value:     s.Value,
	}
}

// Emit writes one PUTVAL line for the sample.
func (e *Emitter) Emit(script string, ts int64, s model.Sample) error {
	_, err := io.WriteString(e.w, Format(e.Record(script, ts, s)))
	return err
}

// Identifier returns "<host>/munin-<plugin>/<type>" with double quotes escaped.
func Identifier(r model.Record) string {
	id := r.Host + "/munin-" + r.Plugin + "/" + r.Type
	return strings.ReplaceAll(id, `"`, `\"`)
}

// Format renders a record as a PUTVAL line, newline included.
func Format(r model.Record) string {
	return fmt.Sprintf(putvalFormat, Identifier(r), r.Interval, r.Timestamp, r.Value)
}
