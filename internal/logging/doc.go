// Package logging builds slog loggers for fxchain.
//
// Two output formats are supported: a console handler that prints a compact
// header line with indented fields, and a JSON handler for machine
// consumption. Loggers write to stdout and, when a log directory is
// configured, to fxchain.log inside it.
package logging
