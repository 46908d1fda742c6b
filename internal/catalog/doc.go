// Package catalog stores discovered plugins and their parsed parameters in
// a SQLite database.
//
// Scans are staleness-aware: a plugin whose bundle modification time has not
// advanced past its last successful scan is skipped without invoking the
// analyzer. The scan timestamp is wall-clock time recorded after a
// successful parse while the staleness check compares against the bundle's
// file mtime; a bundle touched twice within the same second as a long scan
// can in rare cases be considered fresh. That comparison is kept as is.
package catalog
