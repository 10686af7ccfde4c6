package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the durable audit trail.
type Store interface {
	Sink
	List(ctx context.Context, limit, offset int) ([]Record, int, error)
}

// PGStore writes audit records to the audit_logs table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL backed store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Append inserts rec. A zero timestamp defers to the database clock.
func (s *PGStore) Append(ctx context.Context, rec Record) error {
	var occurredAt any
	if !rec.Timestamp.IsZero() {
		occurredAt = rec.Timestamp
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO audit_logs (user_id, action, resource, resource_id, allowed, occurred_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))`,
		rec.UserID, rec.Action, rec.Resource, rec.ResourceID, rec.Allowed, occurredAt)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// List returns a page of records, newest first, with the total row count.
func (s *PGStore) List(ctx context.Context, limit, offset int) ([]Record, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, action, resource, resource_id, allowed, occurred_at
FROM audit_logs
ORDER BY occurred_at DESC, id DESC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec        Record
		resourceID *int64
		occurredAt time.Time
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Action, &rec.Resource, &resourceID, &rec.Allowed, &occurredAt); err != nil {
		return Record{}, fmt.Errorf("scan audit record: %w", err)
	}
	rec.ResourceID = resourceID
	rec.Timestamp = occurredAt.UTC()
	return rec, nil
}

// PurgeBefore deletes records that occurred before cutoff.
func (s *PGStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit records: %w", err)
	}
	return tag.RowsAffected(), nil
}
