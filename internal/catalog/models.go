package catalog

import (
	"strings"
	"time"

	"fxchain/internal/params"
)

// Plugin is one catalog entry, keyed by bundle path.
type Plugin struct {
	ID   int64
	Path string
	Name string
	// LastScanned is the epoch-second timestamp of the last successful
	// scan; 0 means never scanned.
	LastScanned int64
}

// Scanned reports whether the plugin has ever been scanned successfully.
func (p *Plugin) Scanned() bool {
	return p != nil && p.LastScanned != 0
}

// ScannedAt returns the last successful scan time, or the zero time.
func (p *Plugin) ScannedAt() time.Time {
	if !p.Scanned() {
		return time.Time{}
	}
	return time.Unix(p.LastScanned, 0)
}

// Parameter is one stored parameter row, identified by (PluginID, Index).
type Parameter struct {
	PluginID     int64
	Index        int
	Name         string
	Values       string
	Default      string
	SupportsText bool
}

// midiCCPrefix marks the per-controller mapping parameters some hosts
// expose in bulk; they drown out the musically relevant ones.
const midiCCPrefix = "MIDI CC "

// Usable reports whether a parameter should appear in operator-facing
// views: it needs a real values specification and must not be a MIDI
// controller mapping slot.
func (p Parameter) Usable() bool {
	values := strings.TrimSpace(p.Values)
	if values == "" || values == params.MalformedRange {
		return false
	}
	return !strings.HasPrefix(p.Name, midiCCPrefix)
}
