package tasks

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taskboard/taskboard/internal/shared"
)

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

func TestBuildListQueryWithoutFilters(t *testing.T) {
	query, args := buildListQuery([]int64{1, 2}, ListFilters{})
	assert.Contains(t, query, "organization_id = ANY($1)")
	assert.NotContains(t, query, "category =")
	assert.True(t, strings.HasSuffix(query, `ORDER BY "order" ASC, updated_at DESC, id ASC`))
	assert.Equal(t, []any{[]int64{1, 2}}, args)
}

func TestBuildListQueryNumbersFilterPlaceholders(t *testing.T) {
	query, args := buildListQuery([]int64{5}, ListFilters{Category: "Work", Status: StatusDone})
	assert.Contains(t, query, "AND category = $2")
	assert.Contains(t, query, "AND status = $3")
	assert.Equal(t, []any{[]int64{5}, "Work", "Done"}, args)

	query, args = buildListQuery([]int64{5}, ListFilters{Status: StatusTodo})
	assert.Contains(t, query, "AND status = $2")
	assert.Equal(t, []any{[]int64{5}, "Todo"}, args)
}

func TestScanUpdatedMapsMissingRowToNotFound(t *testing.T) {
	_, err := scanUpdated(errRow{err: pgx.ErrNoRows})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	boom := errors.New("connection reset")
	_, err = scanUpdated(errRow{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, shared.ErrNotFound))
}
