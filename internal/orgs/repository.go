package orgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskboard/taskboard/internal/shared"
)

// Store is the organization query the scope resolver depends on.
type Store interface {
	FindByParent(ctx context.Context, parentID int64) ([]Organization, error)
}

// PGRepository implements Store using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByParent returns the direct children of parentID.
func (r *PGRepository) FindByParent(ctx context.Context, parentID int64) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, parent_org_id FROM organizations WHERE parent_org_id = $1 ORDER BY id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("orgs: find by parent: %w", err)
	}
	defer rows.Close()

	var out []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.ParentOrgID); err != nil {
			return nil, fmt.Errorf("orgs: scan: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Get fetches an organization by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (Organization, error) {
	var o Organization
	err := r.pool.QueryRow(ctx, `SELECT id, name, parent_org_id FROM organizations WHERE id = $1`, id).Scan(&o.ID, &o.Name, &o.ParentOrgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, shared.ErrNotFound
		}
		return Organization{}, fmt.Errorf("orgs: get: %w", err)
	}
	return o, nil
}

// Create inserts an organization. A parent that itself has a parent is
// rejected to keep the hierarchy two levels deep.
func (r *PGRepository) Create(ctx context.Context, name string, parentID *int64) (Organization, error) {
	if parentID != nil {
		parent, err := r.Get(ctx, *parentID)
		if err != nil {
			return Organization{}, err
		}
		if parent.ParentOrgID != nil {
			return Organization{}, fmt.Errorf("%w: organization %d is already a child", shared.ErrValidation, parent.ID)
		}
	}
	o := Organization{Name: name, ParentOrgID: parentID}
	err := r.pool.QueryRow(ctx, `INSERT INTO organizations (name, parent_org_id) VALUES ($1, $2) RETURNING id`, name, parentID).Scan(&o.ID)
	if err != nil {
		return Organization{}, fmt.Errorf("orgs: create: %w", err)
	}
	return o, nil
}

var _ Store = (*PGRepository)(nil)
