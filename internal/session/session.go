package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kobzarvs/tabedit/internal/logger"
)

// FileState is where the cursor and viewport were in one document.
type FileState struct {
	Row       int
	Col       int
	RowEnd    int
	ColEnd    int
	ScrollRow int
	ScrollCol int
	Updated   time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	row        INTEGER NOT NULL,
	col        INTEGER NOT NULL,
	row_end    INTEGER NOT NULL,
	col_end    INTEGER NOT NULL,
	scroll_row INTEGER NOT NULL,
	scroll_col INTEGER NOT NULL,
	updated    INTEGER NOT NULL
)`

// Manager persists per-file state in a SQLite database. Updates are
// buffered in memory and flushed by Save, the autosave loop or Stop.
type Manager struct {
	mu       sync.Mutex
	db       *sql.DB
	pending  map[string]FileState
	stopChan chan struct{}
	stopOnce sync.Once
	closed   bool
}

// NewManager opens the database in the XDG state directory and starts the
// autosave loop.
func NewManager() (*Manager, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	m, err := Open(path)
	if err != nil {
		return nil, err
	}
	go m.autosaveLoop(15 * time.Second)
	return m, nil
}

func sessionPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "tabedit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}

// Open opens or creates the database at path without starting autosave.
func Open(path string) (*Manager, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect session db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	return &Manager{
		db:       db,
		pending:  make(map[string]FileState),
		stopChan: make(chan struct{}),
	}, nil
}

// GetFileState returns the saved state for a file.
func (m *Manager) GetFileState(absPath string) (FileState, bool) {
	m.mu.Lock()
	if st, ok := m.pending[absPath]; ok {
		m.mu.Unlock()
		return st, true
	}
	m.mu.Unlock()

	var st FileState
	var updated int64
	err := m.db.QueryRow(
		`SELECT row, col, row_end, col_end, scroll_row, scroll_col, updated FROM files WHERE path = ?`,
		absPath,
	).Scan(&st.Row, &st.Col, &st.RowEnd, &st.ColEnd, &st.ScrollRow, &st.ScrollCol, &updated)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("session: lookup failed", "path", absPath, "error", err)
		}
		return FileState{}, false
	}
	st.Updated = time.Unix(0, updated)
	return st, true
}

// SetFileState records the state for a file until the next Save.
func (m *Manager) SetFileState(absPath string, state FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state.Updated = time.Now()
	m.pending[absPath] = state
}

// Save writes buffered updates in one transaction.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if m.closed || len(m.pending) == 0 {
		return nil
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO files
		(path, row, col, row_end, col_end, scroll_row, scroll_col, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare session insert: %w", err)
	}
	defer stmt.Close()
	for path, st := range m.pending {
		if _, err := stmt.Exec(path, st.Row, st.Col, st.RowEnd, st.ColEnd, st.ScrollRow, st.ScrollCol, st.Updated.UnixNano()); err != nil {
			tx.Rollback()
			return fmt.Errorf("save session for %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	logger.Debug("session: saved", "files", len(m.pending))
	clear(m.pending)
	return nil
}

// Forget removes a file from the session.
func (m *Manager) Forget(absPath string) error {
	m.mu.Lock()
	delete(m.pending, absPath)
	m.mu.Unlock()
	if _, err := m.db.Exec(`DELETE FROM files WHERE path = ?`, absPath); err != nil {
		return fmt.Errorf("forget %s: %w", absPath, err)
	}
	return nil
}

func (m *Manager) autosaveLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(); err != nil {
				logger.Warn("session: autosave failed", "error", err)
			}
		case <-m.stopChan:
			return
		}
	}
}

// Stop ends the autosave loop, flushes pending state and closes the
// database.
func (m *Manager) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.mu.Lock()
		defer m.mu.Unlock()
		err = m.saveLocked()
		m.closed = true
		if cerr := m.db.Close(); err == nil {
			err = cerr
		}
	})
	return err
}
