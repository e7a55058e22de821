package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	// An explicit path that does not exist is reported.
	require.Error(t, err)
	assert.Equal(t, Config{}, cfg)

	v := New("")
	v.AddConfigPath(dir)
	require.NoError(t, Read(v))
	cfg, err = Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Verification.Timeout)
	assert.Equal(t, 3, cfg.Submission.MaxRetries)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formflow.yaml")
	body := []byte(`
environment: staging
locale: cy
database:
  driver: postgres
  dsn: postgres://localhost/formflow
verification:
  url: https://bank.example/verify
  timeout: 2s
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("FORMFLOW_SUBMISSION_URL", "https://crm.example/applications")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "cy", cfg.Locale)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://bank.example/verify", cfg.Verification.URL)
	assert.Equal(t, 2*time.Second, cfg.Verification.Timeout)
	assert.Equal(t, "https://crm.example/applications", cfg.Submission.URL)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Config{Locale: "fr", Database: DatabaseConfig{Driver: "mysql"}}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), `locale "fr"`)
	assert.Contains(t, err.Error(), `driver "mysql"`)
}
