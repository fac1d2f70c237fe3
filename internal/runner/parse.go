package runner

import (
	"regexp"

	"github.com/remicollet/collectd/model"
)

// valueLine matches "<field>.value <real>". The field may not contain '.', '-' or '/'.
var valueLine = regexp.MustCompile(`^([^.\-/]+)\.value\s+([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s*$`)

// ParseLine extracts the field name and numeric text from one line of plugin
// output. Any other line, including Munin's config directives, is rejected.
func ParseLine(line string) (model.Sample, bool) {
	m := valueLine.FindStringSubmatch(line)
	if m == nil {
		return model.Sample{}, false
	}
	return model.Sample{Field: m[1], Value: m[2]}, true
}
