package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/collabops/brief-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS briefs (
	creator_id        TEXT NOT NULL,
	brief_id          TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'draft',
	extraction_status TEXT NOT NULL DEFAULT 'pending',
	converted         INTEGER NOT NULL DEFAULT 0,
	deleted           INTEGER NOT NULL DEFAULT 0,
	view_count        INTEGER NOT NULL DEFAULT 0,
	doc               TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (creator_id, brief_id)
);

CREATE INDEX IF NOT EXISTS idx_briefs_status ON briefs(creator_id, status);
CREATE INDEX IF NOT EXISTS idx_briefs_extraction ON briefs(creator_id, extraction_status);
CREATE INDEX IF NOT EXISTS idx_briefs_created_at ON briefs(creator_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateBrief(ctx context.Context, b *model.Brief) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal brief")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO briefs (creator_id, brief_id, status, extraction_status, converted, deleted, view_count, doc, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.CreatorID, b.BriefID, string(b.Status), string(b.AIExtraction.Status),
		boolInt(b.DealConversion.IsConverted), boolInt(b.Deleted), b.ViewCount,
		string(doc), b.CreatedAt, b.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert brief %s", b.BriefID)
}

func (s *SQLiteStore) GetBrief(ctx context.Context, creatorID, briefID string) (*model.Brief, error) {
	var doc string
	var viewCount int
	err := s.db.QueryRowContext(ctx,
		`SELECT doc, view_count FROM briefs WHERE creator_id = ? AND brief_id = ? AND deleted = 0`,
		creatorID, briefID,
	).Scan(&doc, &viewCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get brief %s", briefID)
	}
	return unmarshalBrief(doc, viewCount)
}

func (s *SQLiteStore) ListBriefs(ctx context.Context, creatorID string, filter BriefFilter) ([]model.Brief, error) {
	query := `SELECT doc, view_count FROM briefs WHERE creator_id = ?`
	args := []any{creatorID}

	if !filter.IncludeDeleted {
		query += ` AND deleted = 0`
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ExtractionStatus != "" {
		query += ` AND extraction_status = ?`
		args = append(args, string(filter.ExtractionStatus))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list briefs")
	}
	defer rows.Close()

	var briefs []model.Brief
	for rows.Next() {
		var doc string
		var viewCount int
		if err := rows.Scan(&doc, &viewCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan brief")
		}
		b, err := unmarshalBrief(doc, viewCount)
		if err != nil {
			return nil, err
		}
		briefs = append(briefs, *b)
	}
	return briefs, eris.Wrap(rows.Err(), "sqlite: list briefs iterate")
}

func (s *SQLiteStore) SaveBrief(ctx context.Context, b *model.Brief) error {
	b.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(b)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal brief")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE briefs SET doc = ?, status = ?, extraction_status = ?, converted = ?, deleted = ?, updated_at = ?
		 WHERE creator_id = ? AND brief_id = ?`,
		string(doc), string(b.Status), string(b.AIExtraction.Status),
		boolInt(b.DealConversion.IsConverted), boolInt(b.Deleted), b.UpdatedAt,
		b.CreatorID, b.BriefID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save brief %s", b.BriefID)
	}
	return checkRowsAffected(res, b.BriefID)
}

func (s *SQLiteStore) TryStartExtraction(ctx context.Context, creatorID, briefID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE briefs SET extraction_status = ?, updated_at = ?
		 WHERE creator_id = ? AND brief_id = ? AND deleted = 0
		   AND extraction_status IN (?, ?)`,
		string(model.ExtractionProcessing), time.Now().UTC(),
		creatorID, briefID,
		string(model.ExtractionPending), string(model.ExtractionFailed),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: start extraction %s", briefID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n == 1, nil
}

func (s *SQLiteStore) MarkConverted(ctx context.Context, creatorID, briefID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE briefs SET converted = 1, updated_at = ?
		 WHERE creator_id = ? AND brief_id = ? AND deleted = 0 AND converted = 0`,
		time.Now().UTC(), creatorID, briefID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: mark converted %s", briefID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n == 1, nil
}

func (s *SQLiteStore) UnmarkConverted(ctx context.Context, creatorID, briefID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE briefs SET converted = 0, updated_at = ?
		 WHERE creator_id = ? AND brief_id = ? AND converted = 1`,
		time.Now().UTC(), creatorID, briefID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: unmark converted %s", briefID)
	}
	return checkRowsAffected(res, briefID)
}

func (s *SQLiteStore) SoftDelete(ctx context.Context, creatorID, briefID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE briefs SET deleted = 1, updated_at = ?
		 WHERE creator_id = ? AND brief_id = ? AND deleted = 0 AND converted = 0`,
		time.Now().UTC(), creatorID, briefID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete brief %s", briefID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 1 {
		return nil
	}

	// Distinguish "missing" from "converted".
	var converted int
	err = s.db.QueryRowContext(ctx,
		`SELECT converted FROM briefs WHERE creator_id = ? AND brief_id = ? AND deleted = 0`,
		creatorID, briefID,
	).Scan(&converted)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete brief %s", briefID)
	}
	return ErrBriefConverted
}

func (s *SQLiteStore) IncrementViews(ctx context.Context, creatorID, briefID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE briefs SET view_count = view_count + 1 WHERE creator_id = ? AND brief_id = ? AND deleted = 0`,
		creatorID, briefID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: increment views %s", briefID)
	}
	return checkRowsAffected(res, briefID)
}

func (s *SQLiteStore) CountBriefsSince(ctx context.Context, creatorID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM briefs WHERE creator_id = ? AND created_at >= ?`,
		creatorID, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count briefs")
}

func unmarshalBrief(doc string, viewCount int) (*model.Brief, error) {
	var b model.Brief
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal brief doc")
	}
	// The view counter is bumped in place; the column is authoritative.
	b.ViewCount = viewCount
	return &b, nil
}

func checkRowsAffected(res sql.Result, briefID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
