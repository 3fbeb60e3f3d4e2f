// Package sqlite backs the device-token store with a local database for
// deployments without a redis key-space, such as dev mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/aria-khodro/cargo-relay/internal/config"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS push_tokens (
	scope     TEXT NOT NULL,
	client_id TEXT NOT NULL,
	token     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_push_tokens_lookup ON push_tokens (scope, client_id);
`

// TokenStore implements the same prefix-match semantics as the redis scan:
// every token registered under (scope, client_id...) matches.
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(cfg config.SQLiteConfig) (*TokenStore, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &TokenStore{db: db}, nil
}

func (s *TokenStore) Tokens(ctx context.Context, scope domain.TenantScope, clientID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token FROM push_tokens WHERE scope = ? AND client_id LIKE ? || '%' ORDER BY rowid`,
		string(scope), clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: token query: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens, rows.Err()
}

// RegisterToken stores one device token. Used by dev tooling and tests.
func (s *TokenStore) RegisterToken(ctx context.Context, scope domain.TenantScope, clientID, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_tokens (scope, client_id, token) VALUES (?, ?, ?)`,
		string(scope), clientID, token,
	)
	return err
}

func (s *TokenStore) Close() error {
	return s.db.Close()
}
