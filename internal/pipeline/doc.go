// Package pipeline executes the session's plugin chain over an audio file.
//
// A run makes one or more passes over the stage list. Within a pass each
// stage reads the previous stage's output; the last stage of a pass writes
// the run's output file, which becomes the next pass's input. The first
// failing invocation aborts the run; files produced by earlier stages are
// left in place for diagnosis.
package pipeline
