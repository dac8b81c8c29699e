package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "books_pro.json", cfg.DataPath)
	assert.Equal(t, "library_log.txt", cfg.LogPath)
	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, 1.5, cfg.FeePerDay)
	assert.Equal(t, 14, cfg.LoanDays)
	assert.Equal(t, 28, cfg.MaxRenewalDays)
	assert.True(t, cfg.DisallowDuplicates)
	assert.Equal(t, "auto", cfg.Renderer)
	assert.True(t, cfg.Seed)
	assert.False(t, cfg.Verbose)
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LIBRARY_DATA_PATH", "/tmp/collection.db")
	t.Setenv("LIBRARY_BACKEND", "SQLITE")
	t.Setenv("LIBRARY_FEE_PER_DAY", "2.25")
	t.Setenv("LIBRARY_LOAN_DAYS", "7")
	t.Setenv("LIBRARY_RENDERER", "Plain")
	t.Setenv("LIBRARY_SEED", "false")

	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/tmp/collection.db", cfg.DataPath)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 2.25, cfg.FeePerDay)
	assert.Equal(t, 7, cfg.LoanDays)
	assert.Equal(t, "plain", cfg.Renderer)
	assert.False(t, cfg.Seed)
}

func TestValidate(t *testing.T) {
	base := func() *Config { return New() }

	cfg := base()
	cfg.DataPath = ""
	assert.ErrorContains(t, cfg.Validate(), "data path")

	cfg = base()
	cfg.Backend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unknown backend")

	cfg = base()
	cfg.FeePerDay = -1
	assert.ErrorContains(t, cfg.Validate(), "fee per day")

	cfg = base()
	cfg.LoanDays = 0
	assert.ErrorContains(t, cfg.Validate(), "loan days")

	cfg = base()
	cfg.MaxRenewalDays = -5
	assert.ErrorContains(t, cfg.Validate(), "renewal days")

	cfg = base()
	cfg.Renderer = "html"
	assert.ErrorContains(t, cfg.Validate(), "unknown renderer")
}
