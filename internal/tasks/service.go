package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskboard/taskboard/internal/orgs"
	"github.com/taskboard/taskboard/internal/rbac"
	"github.com/taskboard/taskboard/internal/shared"
)

// Service applies organization scoping to task operations. Capability checks
// happen before the service is reached; the service enforces row-level access.
type Service struct {
	repo     Repository
	scopes   orgs.ScopeSource
	guard    *orgs.Guard[Task]
	validate *validator.Validate
}

// NewService constructs a task service.
func NewService(repo Repository, scopes orgs.ScopeSource) *Service {
	return &Service{
		repo:     repo,
		scopes:   scopes,
		guard:    orgs.NewGuard[Task](repo, scopes),
		validate: validator.New(),
	}
}

// List returns the board for p's organization scope.
func (s *Service) List(ctx context.Context, p rbac.Principal, filters ListFilters) ([]Task, error) {
	filters.Category = strings.TrimSpace(filters.Category)
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, filters.Status)
	}
	scope, err := s.scopes.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return []Task{}, nil
	}
	return s.repo.List(ctx, scope.IDs(), filters)
}

// Create adds a task to p's home organization with p as owner.
func (s *Service) Create(ctx context.Context, p rbac.Principal, req CreateTaskRequest) (Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if err := s.validateStruct(req); err != nil {
		return Task{}, err
	}
	status := StatusTodo
	if req.Status != nil {
		status = *req.Status
	}
	task := Task{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Status:         status,
		Order:          0,
		OrganizationID: p.OrganizationID,
		OwnerID:        p.ID,
	}
	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// Update applies a partial update after checking access to the task.
func (s *Service) Update(ctx context.Context, p rbac.Principal, id int64, req UpdateTaskRequest) (Task, error) {
	req.Title = trimmed(req.Title)
	req.Category = trimmed(req.Category)
	if err := s.validateStruct(req); err != nil {
		return Task{}, err
	}
	task, err := s.authorize(ctx, p, id)
	if err != nil {
		return Task{}, err
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Order != nil {
		task.Order = *req.Order
	}
	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// Delete removes a task after checking access to it.
func (s *Service) Delete(ctx context.Context, p rbac.Principal, id int64) error {
	if _, err := s.authorize(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Reorder moves every listed task into status, ordering them by position in
// the request. Access is checked for each task before anything is written;
// the first failing task aborts the whole operation.
func (s *Service) Reorder(ctx context.Context, p rbac.Principal, status Status, req ReorderRequest) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, status)
	}
	if err := s.validateStruct(req); err != nil {
		return 0, err
	}
	for _, id := range req.TaskIDs {
		if _, err := s.authorize(ctx, p, id); err != nil {
			return 0, err
		}
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for idx, id := range req.TaskIDs {
			if err := tx.UpdatePosition(ctx, id, status, idx); err != nil {
				return fmt.Errorf("task %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("reorder tasks: %w", err)
	}
	return len(req.TaskIDs), nil
}

func (s *Service) authorize(ctx context.Context, p rbac.Principal, id int64) (Task, error) {
	task, err := s.guard.Authorize(ctx, p, id)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			return Task{}, fmt.Errorf("task %d: %w", id, shared.ErrNotFound)
		case errors.Is(err, shared.ErrOutOfScope):
			return Task{}, fmt.Errorf("not allowed to access task %d: %w", id, shared.ErrOutOfScope)
		}
		return Task{}, err
	}
	return task, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *Service) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", shared.ErrValidation, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}
