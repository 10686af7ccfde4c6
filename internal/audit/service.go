package audit

import (
	"context"
	"fmt"

	"github.com/taskboard/taskboard/internal/shared"
)

// Lister reads the stored trail.
type Lister interface {
	List(ctx context.Context, limit, offset int) ([]Record, int, error)
}

// Page is one page of the audit trail.
type Page struct {
	Records    []Record          `json:"records"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service serves the audit trail to auditors.
type Service struct {
	repo Lister
}

// NewService constructs an audit listing service.
func NewService(repo Lister) *Service {
	return &Service{repo: repo}
}

// List returns the requested page, newest entries first.
func (s *Service) List(ctx context.Context, page, perPage int) (Page, error) {
	if s.repo == nil {
		return Page{}, fmt.Errorf("audit: repository not configured")
	}
	page, perPage = shared.NormalizePage(page, perPage)
	offset := shared.Pagination{Page: page, PerPage: perPage}.Offset()
	records, total, err := s.repo.List(ctx, perPage, offset)
	if err != nil {
		return Page{}, err
	}
	if records == nil {
		records = []Record{}
	}
	return Page{Records: records, Pagination: shared.NewPagination(page, perPage, total)}, nil
}
