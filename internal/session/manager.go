package session

import (
	"errors"
	"log/slog"

	"fxchain/internal/logging"
)

// Manager owns the live session and applies the mutate-then-persist rule:
// every successful mutation is followed by an autosave so a crash at any
// point loses at most the operation in flight. A failed autosave is logged
// but never rolls back the mutation; memory and disk may diverge until the
// next successful write.
type Manager struct {
	session *Session
	snaps   *Snapshots
	logger  *slog.Logger
}

// NewManager builds a manager over the given snapshot store. If an autosave
// snapshot exists it is restored; a corrupt autosave is reported and the
// manager starts with an empty session.
func NewManager(snaps *Snapshots, logger *slog.Logger) *Manager {
	logger = logging.NewComponentLogger(logger, "session")
	m := &Manager{
		session: &Session{},
		snaps:   snaps,
		logger:  logger,
	}

	restored, err := snaps.Load(AutosaveName)
	switch {
	case err == nil:
		m.session = restored
		logger.Info("restored autosaved session",
			logging.Int("stages", len(restored.Stages)))
	case errors.Is(err, ErrNoSnapshot):
		// Fresh start.
	default:
		logger.Warn("autosave unreadable, starting empty",
			logging.Error(err))
	}
	return m
}

// Session exposes the live session for reading. Callers must not mutate it
// directly; use the manager's operations so persistence stays consistent.
func (m *Manager) Session() *Session {
	return m.session
}

// AddStage appends a stage and autosaves.
func (m *Manager) AddStage(stage Stage) error {
	return m.mutate(func(s *Session) error {
		return s.AddStage(stage)
	})
}

// ModifyStage replaces a stage's bindings and autosaves, returning the
// previous bindings.
func (m *Manager) ModifyStage(index int, bindings []string) ([]string, error) {
	var previous []string
	err := m.mutate(func(s *Session) error {
		var opErr error
		previous, opErr = s.ModifyStage(index, bindings)
		return opErr
	})
	return previous, err
}

// RemoveStage removes a stage and autosaves, returning the removed stage.
func (m *Manager) RemoveStage(index int) (Stage, error) {
	var removed Stage
	err := m.mutate(func(s *Session) error {
		var opErr error
		removed, opErr = s.RemoveStage(index)
		return opErr
	})
	return removed, err
}

// Reset clears the pipeline and autosaves.
func (m *Manager) Reset() error {
	return m.mutate(func(s *Session) error {
		s.Reset()
		return nil
	})
}

// SetInput updates the default input and autosaves.
func (m *Manager) SetInput(path string) error {
	return m.mutate(func(s *Session) error {
		return s.SetInput(path)
	})
}

// SetInputFromLastOutput points the input at the last output and autosaves.
func (m *Manager) SetInputFromLastOutput() error {
	return m.mutate(func(s *Session) error {
		return s.SetInputFromLastOutput()
	})
}

// SetLastOutput records a produced output file and autosaves. The execution
// engine calls this at the end of each successful pass.
func (m *Manager) SetLastOutput(path string) error {
	return m.mutate(func(s *Session) error {
		s.LastOutput = path
		return nil
	})
}

// Autosave persists the current session under the reserved name without
// mutating anything. Used at the end of a run regardless of outcome.
func (m *Manager) Autosave() error {
	return m.snaps.Save(AutosaveName, m.session)
}

// Save persists the current session under name. An empty name saves the
// autosave snapshot.
func (m *Manager) Save(name string) error {
	if name == "" {
		name = AutosaveName
	}
	return m.snaps.Save(name, m.session)
}

// Load replaces the in-memory session with the named snapshot. On failure
// the current session is untouched. An empty name loads the autosave.
func (m *Manager) Load(name string) error {
	if name == "" {
		name = AutosaveName
	}
	restored, err := m.snaps.Load(name)
	if err != nil {
		return err
	}
	m.session = restored
	// Loading also refreshes the autosave so a restart continues from the
	// loaded snapshot, not the pre-load state.
	m.autosaveAfterMutation()
	return nil
}

func (m *Manager) mutate(op func(*Session) error) error {
	if err := op(m.session); err != nil {
		return err
	}
	m.autosaveAfterMutation()
	return nil
}

func (m *Manager) autosaveAfterMutation() {
	if err := m.snaps.Save(AutosaveName, m.session); err != nil {
		m.logger.Warn("autosave failed; in-memory state is ahead of disk",
			logging.Error(err))
	}
}
