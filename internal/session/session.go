// Package session models the operator's pipeline: an ordered list of plugin
// stages with bound parameters, an optional default input file, and the
// most recently produced output.
//
// The Session value type is pure; every mutating method validates its
// arguments and either mutates and returns nil or leaves the session
// untouched and returns a validation error. Persistence is layered on top
// by Manager so the model stays testable without any I/O.
package session

import (
	"fmt"
	"strings"

	"fxchain/internal/services"
)

// Stage is one plugin invocation inside the pipeline. The plugin's path and
// display name are denormalized copies for display; PluginID is the catalog
// identity.
type Stage struct {
	PluginID   int64    `json:"plugin_id"`
	PluginPath string   `json:"plugin_path"`
	PluginName string   `json:"plugin_name"`
	// Bindings are opaque name:value strings forwarded verbatim to the
	// analyzer. Unknown or out-of-range values are allowed on purpose.
	Bindings []string `json:"bindings"`
}

// Session is the ordered pipeline plus its input/output pointers. Stage
// indices are 0-based internally; the operator surface is 1-based.
type Session struct {
	Stages     []Stage `json:"stages"`
	InputPath  string  `json:"input_path,omitempty"`
	LastOutput string  `json:"last_output,omitempty"`
}

// AddStage appends a stage to the pipeline.
func (s *Session) AddStage(stage Stage) error {
	if strings.TrimSpace(stage.PluginPath) == "" {
		return services.Wrap(services.ErrValidation, "session", "add", "stage has no plugin path", nil)
	}
	s.Stages = append(s.Stages, stage)
	return nil
}

// ModifyStage replaces the bindings of the 1-based index'th stage wholesale
// and returns the previous bindings.
func (s *Session) ModifyStage(index int, bindings []string) ([]string, error) {
	pos, err := s.checkIndex(index, "mod")
	if err != nil {
		return nil, err
	}
	previous := s.Stages[pos].Bindings
	s.Stages[pos].Bindings = append([]string(nil), bindings...)
	return previous, nil
}

// RemoveStage deletes and returns the 1-based index'th stage.
func (s *Session) RemoveStage(index int) (Stage, error) {
	pos, err := s.checkIndex(index, "rm")
	if err != nil {
		return Stage{}, err
	}
	removed := s.Stages[pos]
	s.Stages = append(s.Stages[:pos], s.Stages[pos+1:]...)
	return removed, nil
}

// Reset clears all stages. Input and last-output pointers are kept.
func (s *Session) Reset() {
	s.Stages = nil
}

// SetInput updates the default input pointer.
func (s *Session) SetInput(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return services.Wrap(services.ErrValidation, "session", "in", "input path required", nil)
	}
	s.InputPath = path
	return nil
}

// SetInputFromLastOutput points the default input at the last produced output.
func (s *Session) SetInputFromLastOutput() error {
	if strings.TrimSpace(s.LastOutput) == "" {
		return services.Wrap(services.ErrValidation, "session", "in_last", "no output has been produced yet", nil)
	}
	s.InputPath = s.LastOutput
	return nil
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	cp := &Session{
		Stages:     make([]Stage, len(s.Stages)),
		InputPath:  s.InputPath,
		LastOutput: s.LastOutput,
	}
	for i, stage := range s.Stages {
		stage.Bindings = append([]string(nil), stage.Bindings...)
		cp.Stages[i] = stage
	}
	return cp
}

func (s *Session) checkIndex(index int, op string) (int, error) {
	if index < 1 || index > len(s.Stages) {
		return 0, services.Wrap(services.ErrValidation, "session", op,
			fmt.Sprintf("stage index %d out of range (pipeline has %d stages)", index, len(s.Stages)), nil)
	}
	return index - 1, nil
}
