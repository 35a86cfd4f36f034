package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dmchat/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DatabaseBackend)
	require.Equal(t, "dmchat.db", cfg.SQLitePath)
	require.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr())
	require.NotEmpty(t, cfg.CORSOrigins)
	require.Equal(t, 5000, cfg.MaxMessageRunes)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadPostgresURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_BACKEND", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "messages")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(cfg.DatabaseURL, "postgres://"))
	require.Contains(t, cfg.DatabaseURL, "db.internal")
	require.Contains(t, cfg.DatabaseURL, "messages")
}

func TestLoadUnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_BACKEND", "oracle")

	_, err := config.Load()
	require.Error(t, err)
}
