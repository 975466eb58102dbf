// Package history journals terminal request outcomes for the stats
// surfaces (bot /stats command and the dashboard API).
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/sharegrab/internal/domain"
)

// Store persists one row per terminal outcome.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the outcome journal.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Workers journal outcomes while the stats endpoints poll; a single
	// connection keeps concurrent writers from tripping SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			url TEXT NOT NULL,
			platform TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			assets INTEGER NOT NULL DEFAULT 0,
			bytes_sent INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_outcomes_platform ON outcomes(platform);
		CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the journal.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record journals one outcome. Journaling is best-effort: a write failure
// is logged and never affects the request's result.
func (s *Store) Record(ctx context.Context, req domain.LinkRequest, outcome domain.Outcome) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes (request_id, conversation_id, url, platform, status, reason, assets, bytes_sent, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID.String(),
		req.ConversationID,
		req.RawURL,
		outcome.Platform.String(),
		string(outcome.Status),
		outcome.Reason(),
		outcome.Assets,
		outcome.BytesSent,
		outcome.Skipped,
	)
	if err != nil {
		s.logger.Error("record outcome", "request_id", req.ID, "error", err)
	}
}

// Stats contains aggregate journal counts.
type Stats struct {
	Total       int            `json:"total"`
	Delivered   int            `json:"delivered"`
	Rejected    int            `json:"rejected"`
	Failed      int            `json:"failed"`
	BytesSent   int64          `json:"bytes_sent"`
	PerPlatform map[string]int `json:"per_platform"`
	PerReason   map[string]int `json:"per_reason"`
}

// Stats returns aggregate counts over the whole journal.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		PerPlatform: make(map[string]int),
		PerReason:   make(map[string]int),
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(bytes_sent), 0)
		FROM outcomes`)
	if err := row.Scan(&stats.Total, &stats.Delivered, &stats.Rejected, &stats.Failed, &stats.BytesSent); err != nil {
		return nil, fmt.Errorf("aggregate outcomes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT platform, COUNT(*) FROM outcomes GROUP BY platform`)
	if err != nil {
		return nil, fmt.Errorf("platform counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("scan platform count: %w", err)
		}
		stats.PerPlatform[platform] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("platform counts: %w", err)
	}

	reasonRows, err := s.db.QueryContext(ctx, `SELECT reason, COUNT(*) FROM outcomes WHERE reason != '' GROUP BY reason`)
	if err != nil {
		return nil, fmt.Errorf("reason counts: %w", err)
	}
	defer reasonRows.Close()
	for reasonRows.Next() {
		var reason string
		var count int
		if err := reasonRows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("scan reason count: %w", err)
		}
		stats.PerReason[reason] = count
	}
	if err := reasonRows.Err(); err != nil {
		return nil, fmt.Errorf("reason counts: %w", err)
	}

	return stats, nil
}
