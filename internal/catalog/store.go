package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fxchain/internal/config"
	"fxchain/internal/params"
	"fxchain/internal/services"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.CatalogPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts a plugin descriptor or refreshes its display name on path
// conflict, and returns the stored row. The last_scanned timestamp is never
// touched here.
func (s *Store) Upsert(ctx context.Context, path, name string) (*Plugin, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("plugin path required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = path
	}

	err := s.execWithoutResultRetry(ctx,
		`INSERT INTO plugins (path, name) VALUES (?, ?)
         ON CONFLICT(path) DO UPDATE SET name = excluded.name`,
		path, name,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert plugin: %w", err)
	}
	return s.GetByPath(ctx, path)
}

// GetByID fetches a plugin by catalog identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Plugin, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, path, name, last_scanned FROM plugins WHERE id = ?", id)
	return scanPlugin(row)
}

// GetByPath fetches a plugin by bundle path.
func (s *Store) GetByPath(ctx context.Context, path string) (*Plugin, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, path, name, last_scanned FROM plugins WHERE path = ?", path)
	return scanPlugin(row)
}

// Search returns plugins whose name or path contains the given text,
// case-insensitively, ordered by name.
func (s *Store) Search(ctx context.Context, text string) ([]*Plugin, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, name, last_scanned FROM plugins
         WHERE lower(name) LIKE ? OR lower(path) LIKE ?
         ORDER BY name, id`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search plugins: %w", err)
	}
	defer rows.Close()
	return collectPlugins(rows)
}

// List returns all plugins ordered by name.
func (s *Store) List(ctx context.Context) ([]*Plugin, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, path, name, last_scanned FROM plugins ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list plugins: %w", err)
	}
	defer rows.Close()
	return collectPlugins(rows)
}

// Params returns all stored parameters for a plugin in ordinal order.
func (s *Store) Params(ctx context.Context, pluginID int64) ([]Parameter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plugin_id, idx, name, value_spec, default_value, supports_text
         FROM plugin_params WHERE plugin_id = ? ORDER BY idx`,
		pluginID,
	)
	if err != nil {
		return nil, fmt.Errorf("query params: %w", err)
	}
	defer rows.Close()

	var out []Parameter
	for rows.Next() {
		var p Parameter
		var supportsText int
		if err := rows.Scan(&p.PluginID, &p.Index, &p.Name, &p.Values, &p.Default, &supportsText); err != nil {
			return nil, fmt.Errorf("scan param: %w", err)
		}
		p.SupportsText = supportsText != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// UsableParams returns the operator-facing parameter view: entries with an
// empty or malformed values specification and MIDI controller mapping slots
// are filtered out.
func (s *Store) UsableParams(ctx context.Context, pluginID int64) ([]Parameter, error) {
	all, err := s.Params(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	usable := make([]Parameter, 0, len(all))
	for _, p := range all {
		if p.Usable() {
			usable = append(usable, p)
		}
	}
	return usable, nil
}

// ReplaceParams atomically swaps a plugin's parameter set for the newly
// parsed one and records scannedAt as the last successful scan time. The
// timestamp update rides in the same transaction so a crash can never mark
// a half-written scan complete.
func (s *Store) ReplaceParams(ctx context.Context, pluginID int64, parsed []params.Param, scannedAt time.Time) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin params tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM plugin_params WHERE plugin_id = ?", pluginID); err != nil {
			return fmt.Errorf("clear params: %w", err)
		}
		for _, p := range parsed {
			supportsText := 0
			if p.SupportsText {
				supportsText = 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plugin_params (plugin_id, idx, name, value_spec, default_value, supports_text)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				pluginID, p.Index, p.Name, p.Values, p.Default, supportsText,
			); err != nil {
				return fmt.Errorf("insert param %d: %w", p.Index, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE plugins SET last_scanned = ? WHERE id = ?",
			scannedAt.Unix(), pluginID,
		); err != nil {
			return fmt.Errorf("update last_scanned: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit params: %w", err)
		}
		return nil
	})
}

func scanPlugin(row *sql.Row) (*Plugin, error) {
	var p Plugin
	if err := row.Scan(&p.ID, &p.Path, &p.Name, &p.LastScanned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrNotFound, "catalog", "lookup", "plugin not in catalog", nil)
		}
		return nil, fmt.Errorf("scan plugin: %w", err)
	}
	return &p, nil
}

func collectPlugins(rows *sql.Rows) ([]*Plugin, error) {
	var out []*Plugin
	for rows.Next() {
		var p Plugin
		if err := rows.Scan(&p.ID, &p.Path, &p.Name, &p.LastScanned); err != nil {
			return nil, fmt.Errorf("scan plugin row: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
