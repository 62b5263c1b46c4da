package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"justicia-backend/storage"
)

func TestEnvIntValid(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	v, err := envInt("TEST_INT", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestEnvIntFallback(t *testing.T) {
	v, err := envInt("TEST_INT_MISSING", 99)
	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "abc")
	_, err := envInt("TEST_INT_BAD", 0)
	require.Error(t, err)
	assert.Equal(t, `TEST_INT_BAD="abc" is not a valid integer`, err.Error())
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	v, err := envBool("TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, v)

	t.Setenv("TEST_BOOL_BAD", "maybe")
	_, err = envBool("TEST_BOOL_BAD", false)
	require.Error(t, err)
	assert.Equal(t, `TEST_BOOL_BAD="maybe" is not a valid boolean`, err.Error())
}

func TestEnvDurationInvalid(t *testing.T) {
	t.Setenv("TEST_DURATION_BAD", "soon")
	_, err := envDuration("TEST_DURATION_BAD", time.Second)
	require.Error(t, err)
	assert.Equal(t, `TEST_DURATION_BAD="soon" is not a valid duration`, err.Error())
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORE_DRIVER", "PRECEDENT_SOURCE", "JUSTICIA_CASE_PREFIX",
		"JUSTICIA_PRECEDENT_LIMIT", "STORAGE_TYPE", "JUSTICIA_READ_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, PrecedentSourcePostgres, cfg.PrecedentSource)
	assert.Equal(t, "JUS", cfg.CaseNumberPrefix)
	assert.Equal(t, 3, cfg.PrecedentLimit)
	assert.Equal(t, "local", cfg.StorageType)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("PRECEDENT_SOURCE", "sqlite")
	t.Setenv("PRECEDENT_SQLITE_PATH", "/tmp/p.db")
	t.Setenv("JUSTICIA_CASE_PREFIX", "CBA")
	t.Setenv("JUSTICIA_PRECEDENT_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, PrecedentSourceSQLite, cfg.PrecedentSource)
	assert.Equal(t, "/tmp/p.db", cfg.PrecedentSQLitePath)
	assert.Equal(t, "CBA", cfg.CaseNumberPrefix)
	assert.Equal(t, 5, cfg.PrecedentLimit)
}

func TestLoadReportsEveryBadValue(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("JUSTICIA_PRECEDENT_LIMIT", "three")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `PORT="eighty"`)
	assert.Contains(t, err.Error(), `JUSTICIA_PRECEDENT_LIMIT="three"`)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:             8080,
		DatabaseURL:      "postgres://localhost/justicia",
		StoreDriver:      StoreDriverPostgres,
		PrecedentSource:  PrecedentSourcePostgres,
		CaseNumberPrefix: "JUS",
		PrecedentLimit:   3,
		StorageType:      "local",
		MaxUploadBytes:   1,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, `unknown STORE_DRIVER "mongo"`},
		{"missing dsn", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL is required"},
		{"unknown precedent source", func(c *Config) { c.PrecedentSource = "csv" }, `unknown PRECEDENT_SOURCE "csv"`},
		{"zero limit", func(c *Config) { c.PrecedentLimit = 0 }, "JUSTICIA_PRECEDENT_LIMIT must be positive"},
		{"s3 without bucket", func(c *Config) { c.StorageType = "s3" }, "AWS_S3_BUCKET is required"},
		{"empty prefix", func(c *Config) { c.CaseNumberPrefix = "" }, "JUSTICIA_CASE_PREFIX must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	s3 := valid
	s3.StorageType = "s3"
	s3.S3Bucket = "rulings"
	s3.AWSRegion = "sa-east-1"
	sc := s3.StorageConfig()
	assert.Equal(t, storage.StorageTypeS3, sc.Type)
	assert.Equal(t, "rulings", sc.S3Bucket)
	assert.Equal(t, "sa-east-1", sc.S3Region)

	memory := valid
	memory.StoreDriver = StoreDriverMemory
	memory.DatabaseURL = ""
	assert.NoError(t, memory.Validate())
}
