package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/collabops/brief-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// which keeps the Postgres paths unit-testable without a database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS briefs (
	creator_id        TEXT NOT NULL,
	brief_id          TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'draft',
	extraction_status TEXT NOT NULL DEFAULT 'pending',
	converted         BOOLEAN NOT NULL DEFAULT FALSE,
	deleted           BOOLEAN NOT NULL DEFAULT FALSE,
	view_count        INTEGER NOT NULL DEFAULT 0,
	doc               JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (creator_id, brief_id)
);

CREATE INDEX IF NOT EXISTS idx_briefs_status ON briefs(creator_id, status);
CREATE INDEX IF NOT EXISTS idx_briefs_extraction ON briefs(creator_id, extraction_status);
CREATE INDEX IF NOT EXISTS idx_briefs_created_at ON briefs(creator_id, created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateBrief(ctx context.Context, b *model.Brief) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal brief")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO briefs (creator_id, brief_id, status, extraction_status, converted, deleted, view_count, doc, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.CreatorID, b.BriefID, string(b.Status), string(b.AIExtraction.Status),
		b.DealConversion.IsConverted, b.Deleted, b.ViewCount,
		doc, b.CreatedAt, b.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert brief %s", b.BriefID)
}

func (s *PostgresStore) GetBrief(ctx context.Context, creatorID, briefID string) (*model.Brief, error) {
	var doc []byte
	var viewCount int
	err := s.pool.QueryRow(ctx,
		`SELECT doc, view_count FROM briefs WHERE creator_id = $1 AND brief_id = $2 AND deleted = FALSE`,
		creatorID, briefID,
	).Scan(&doc, &viewCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get brief %s", briefID)
	}
	return unmarshalBrief(string(doc), viewCount)
}

func (s *PostgresStore) ListBriefs(ctx context.Context, creatorID string, filter BriefFilter) ([]model.Brief, error) {
	query := `SELECT doc, view_count FROM briefs WHERE creator_id = $1`
	args := []any{creatorID}

	if !filter.IncludeDeleted {
		query += ` AND deleted = FALSE`
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.ExtractionStatus != "" {
		args = append(args, string(filter.ExtractionStatus))
		query += ` AND extraction_status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list briefs")
	}
	defer rows.Close()

	var briefs []model.Brief
	for rows.Next() {
		var doc []byte
		var viewCount int
		if err := rows.Scan(&doc, &viewCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan brief")
		}
		b, err := unmarshalBrief(string(doc), viewCount)
		if err != nil {
			return nil, err
		}
		briefs = append(briefs, *b)
	}
	return briefs, eris.Wrap(rows.Err(), "postgres: list briefs iterate")
}

func (s *PostgresStore) SaveBrief(ctx context.Context, b *model.Brief) error {
	b.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(b)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal brief")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE briefs SET doc = $1, status = $2, extraction_status = $3, converted = $4, deleted = $5, updated_at = $6
		 WHERE creator_id = $7 AND brief_id = $8`,
		doc, string(b.Status), string(b.AIExtraction.Status),
		b.DealConversion.IsConverted, b.Deleted, b.UpdatedAt,
		b.CreatorID, b.BriefID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save brief %s", b.BriefID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TryStartExtraction(ctx context.Context, creatorID, briefID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE briefs SET extraction_status = $1, updated_at = $2
		 WHERE creator_id = $3 AND brief_id = $4 AND deleted = FALSE
		   AND extraction_status IN ($5, $6)`,
		string(model.ExtractionProcessing), time.Now().UTC(),
		creatorID, briefID,
		string(model.ExtractionPending), string(model.ExtractionFailed),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: start extraction %s", briefID)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) MarkConverted(ctx context.Context, creatorID, briefID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE briefs SET converted = TRUE, updated_at = $1
		 WHERE creator_id = $2 AND brief_id = $3 AND deleted = FALSE AND converted = FALSE`,
		time.Now().UTC(), creatorID, briefID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: mark converted %s", briefID)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) UnmarkConverted(ctx context.Context, creatorID, briefID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE briefs SET converted = FALSE, updated_at = $1
		 WHERE creator_id = $2 AND brief_id = $3 AND converted = TRUE`,
		time.Now().UTC(), creatorID, briefID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: unmark converted %s", briefID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, creatorID, briefID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE briefs SET deleted = TRUE, updated_at = $1
		 WHERE creator_id = $2 AND brief_id = $3 AND deleted = FALSE AND converted = FALSE`,
		time.Now().UTC(), creatorID, briefID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete brief %s", briefID)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var converted bool
	err = s.pool.QueryRow(ctx,
		`SELECT converted FROM briefs WHERE creator_id = $1 AND brief_id = $2 AND deleted = FALSE`,
		creatorID, briefID,
	).Scan(&converted)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrapf(err, "postgres: delete brief %s", briefID)
	}
	return ErrBriefConverted
}

func (s *PostgresStore) IncrementViews(ctx context.Context, creatorID, briefID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE briefs SET view_count = view_count + 1 WHERE creator_id = $1 AND brief_id = $2 AND deleted = FALSE`,
		creatorID, briefID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: increment views %s", briefID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountBriefsSince(ctx context.Context, creatorID string, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM briefs WHERE creator_id = $1 AND created_at >= $2`,
		creatorID, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count briefs")
}
