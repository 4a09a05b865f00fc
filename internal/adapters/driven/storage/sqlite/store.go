package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
)

// dbFileName is the database file inside the data directory.
const dbFileName = "session.db"

// Store is a SQLite database holding the session credential.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.budget-mcp/data/session.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".budget-mcp", "data")
	}

	// Tokens are secrets: keep the directory private.
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("restricting database permissions: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TokenStore returns a TokenStore interface backed by this store.
func (s *Store) TokenStore() driven.TokenStore {
	return &tokenStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_credentials.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// =============================================================================
// TokenStore Implementation
// =============================================================================

type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Save replaces the session credential.
func (s *tokenStore) Save(ctx context.Context, cred domain.Credential) error {
	if cred.ID == "" || cred.AccessToken == "" {
		return domain.NewError(domain.KindValidation, "credential requires an id and access token")
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO session_credential
			(slot, id, access_token, refresh_token, token_type, scope, issued_at, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			scope = excluded.scope,
			issued_at = excluded.issued_at,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, cred.ID, cred.AccessToken, cred.RefreshToken, cred.TokenType, string(cred.Scope),
		cred.IssuedAt.UTC(), cred.ExpiresAt.UTC(), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Get returns the session credential, or nil if none is stored.
func (s *tokenStore) Get(ctx context.Context) (*domain.Credential, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, access_token, refresh_token, token_type, scope, issued_at, expires_at
		FROM session_credential WHERE slot = 1
	`)

	var cred domain.Credential
	var scope string
	if err := row.Scan(&cred.ID, &cred.AccessToken, &cred.RefreshToken, &cred.TokenType,
		&scope, &cred.IssuedAt, &cred.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}
	cred.Scope = domain.Scope(scope)

	return &cred, nil
}

// Clear removes the session credential.
func (s *tokenStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM session_credential"); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}
