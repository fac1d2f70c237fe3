package runner

import (
	"testing"

	"github.com/remicollet/collectd/model"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want model.Sample
		ok   bool
	}{
		{"temp.value 23.5", model.Sample{Field: "temp", Value: "23.5"}, true},
		{"load.value 1", model.Sample{Field: "load", Value: "1"}, true},
		{"down.value\t-42", model.Sample{Field: "down", Value: "-42"}, true},
		{"up.value +3.", model.Sample{Field: "up", Value: "+3."}, true},
		{"frac.value .5", model.Sample{Field: "frac", Value: ".5"}, true},
		{"big.value 1.5e10", model.Sample{Field: "big", Value: "1.5e10"}, true},
		{"small.value 2E-3  ", model.Sample{Field: "small", Value: "2E-3"}, true},
		{"if_eth0.value 7", model.Sample{Field: "if_eth0", Value: "7"}, true},

		{"status.info ok", model.Sample{}, false},
		{"temp.value ok", model.Sample{}, false},
		{"temp.value", model.Sample{}, false},
		{"temp.value 1.2.3", model.Sample{}, false},
		{"temp.value 12abc", model.Sample{}, false},
		{"temp.value U", model.Sample{}, false},
		{"graph_title Temperatures", model.Sample{}, false},
		{"temp.label Temperature", model.Sample{}, false},
		{"a.b.value 1", model.Sample{}, false},
		{"a-b.value 1", model.Sample{}, false},
		{"a/b.value 1", model.Sample{}, false},
		{".value 1", model.Sample{}, false},
		{"", model.Sample{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, ok := ParseLine(tc.line)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}
