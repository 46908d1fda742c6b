// Package analyzer wraps the external plugin host binary.
//
// The binary serves two contracts: listing a plugin's parameters as a
// textual report, and processing an audio file through a plugin with bound
// parameter values. Both are exposed as narrow interfaces so the catalog
// and the pipeline engine can be tested with deterministic substitutes.
//
// Listing calls are bounded by the configured timeout because a hung plugin
// host would otherwise stall a whole catalog scan. Processing calls run
// under the caller's context with no deadline; stage processing may
// legitimately run long, and the asymmetry is kept on purpose.
package analyzer
