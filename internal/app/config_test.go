package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.AppAddr)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, "taskboard", cfg.JWTIssuer)
	assert.Equal(t, AuditSinkDB, cfg.AuditSink)
	assert.Equal(t, 5*time.Second, cfg.AuditWriteTimeout)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUDIT_SINK", "Queue")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, AuditSinkQueue, cfg.AuditSink)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
	t.Run("unknown sink", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("AUDIT_SINK", "kafka")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unknown audit sink")
	})
	t.Run("non-positive ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_TTL", "0s")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "jwt ttl")
	})
}

func TestInTestModeHonoursEnvironment(t *testing.T) {
	t.Setenv("TASKBOARD_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv("TASKBOARD_TEST_MODE", "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv("TASKBOARD_TEST_MODE", "1")
	RefreshTestMode()
}
