package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskboard/taskboard/internal/platform/db"
	"github.com/taskboard/taskboard/internal/shared"
)

// Repository defines persistence operations for tasks.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Task, bool, error)
	List(ctx context.Context, orgIDs []int64, filters ListFilters) ([]Task, error)
	Create(ctx context.Context, task Task) (Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id int64) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	UpdatePosition(ctx context.Context, id int64, status Status, order int) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const taskColumns = `id, title, description, category, status, "order", organization_id, owner_id, created_at, updated_at`

// FindByID fetches a task. found is false when no row exists.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Task, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, false, nil
		}
		return Task{}, false, fmt.Errorf("tasks: find: %w", err)
	}
	return t, true, nil
}

// List returns tasks owned by orgIDs, board ordered.
func (r *PGRepository) List(ctx context.Context, orgIDs []int64, filters ListFilters) ([]Task, error) {
	query, args := buildListQuery(orgIDs, filters)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tasks: list: %w", err)
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("tasks: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a task and returns it with generated fields populated.
func (r *PGRepository) Create(ctx context.Context, task Task) (Task, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO tasks (title, description, category, status, "order", organization_id, owner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+taskColumns,
		task.Title, task.Description, task.Category, string(task.Status), task.Order, task.OrganizationID, task.OwnerID)
	created, err := scanTask(row)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: create: %w", err)
	}
	return created, nil
}

// Update writes mutable fields. Organization and owner are never reassigned.
func (r *PGRepository) Update(ctx context.Context, task Task) (Task, error) {
	row := r.pool.QueryRow(ctx, `UPDATE tasks SET title = $1, description = $2, category = $3, status = $4, "order" = $5, updated_at = NOW()
WHERE id = $6 RETURNING `+taskColumns,
		task.Title, task.Description, task.Category, string(task.Status), task.Order, task.ID)
	return scanUpdated(row)
}

// scanUpdated reads an UPDATE ... RETURNING row. No row means the task was
// deleted after its access check.
func scanUpdated(row pgx.Row) (Task, error) {
	updated, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, fmt.Errorf("tasks: update: %w", err)
	}
	return updated, nil
}

// Delete removes a task by ID.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("tasks: delete: %w", err)
	}
	return nil
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (t *txRepo) UpdatePosition(ctx context.Context, id int64, status Status, order int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE tasks SET status = $1, "order" = $2, updated_at = NOW() WHERE id = $3`, string(status), order, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func buildListQuery(orgIDs []int64, filters ListFilters) (string, []any) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE organization_id = ANY($1)`
	args := []any{orgIDs}
	if filters.Category != "" {
		args = append(args, filters.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY "order" ASC, updated_at DESC, id ASC`
	return query, args
}

func scanTask(row pgx.Row) (Task, error) {
	var (
		t      Task
		status string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &status, &t.Order, &t.OrganizationID, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	t.Status = Status(status)
	return t, err
}

var _ Repository = (*PGRepository)(nil)
