// Package model contains core data types for the project.
package model

// Sample is a single `<field>.value <number>` line read from a Munin plugin.
type Sample struct {
	Field string // Munin field name, e.g. "temp".
	Value string // Numeric text exactly as the plugin printed it.
}

// Record is a sample resolved against the configuration, ready to be written
// as a collectd PUTVAL line.
type Record struct {
	Host      string // Host part of the identifier.
	Plugin    string // Script base name, used as the plugin instance.
	Type      string // collectd type the field was mapped to.
	Interval  int    // Round period in seconds.
	Timestamp int64  // Unix time the owning script was started.
	Value     string // Numeric text.
}
