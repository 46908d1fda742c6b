package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fxchain/internal/services"
	"fxchain/internal/textutil"
)

// AutosaveName is the reserved snapshot written after every mutation and
// loaded at startup.
const AutosaveName = "autosave"

// ErrNoSnapshot indicates the named snapshot does not exist.
var ErrNoSnapshot = errors.New("snapshot not found")

// Snapshots persists sessions as JSON files in a directory, one file per
// name. Writes replace the whole file; there is no merging.
type Snapshots struct {
	dir string
}

// NewSnapshots creates a snapshot store rooted at dir.
func NewSnapshots(dir string) *Snapshots {
	return &Snapshots{dir: dir}
}

// Save serializes the session under name, overwriting any previous
// snapshot with that name. The write goes through a temp file and rename
// so a crash mid-write cannot corrupt an existing snapshot.
func (s *Snapshots) Save(name string, sess *Session) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the named snapshot. A missing snapshot returns ErrNoSnapshot;
// a corrupt one returns a decode error. Either way the caller's in-memory
// session is untouched.
func (s *Snapshots) Load(name string) (*Session, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, name)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", name, err)
	}
	return &sess, nil
}

// List returns the available snapshot names, sorted.
func (s *Snapshots) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			names = append(names, strings.TrimSuffix(name, ".json"))
		}
	}
	return names, nil
}

func (s *Snapshots) pathFor(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "session", "snapshot", "snapshot name required", nil)
	}
	return filepath.Join(s.dir, textutil.SanitizeToken(name)+".json"), nil
}
