package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaDeclaresAllTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"organizations", "users", "tasks", "audit_logs"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	for _, line := range strings.Split(Schema(), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "CREATE") {
			assert.Contains(t, line, "IF NOT EXISTS", line)
		}
	}
}

func TestAuditLogUserHasNoForeignKey(t *testing.T) {
	start := strings.Index(Schema(), "CREATE TABLE IF NOT EXISTS audit_logs")
	if assert.GreaterOrEqual(t, start, 0) {
		block := Schema()[start:]
		block = block[:strings.Index(block, ");")]
		assert.NotContains(t, block, "REFERENCES")
	}
}
