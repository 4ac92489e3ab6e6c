package config

import (
	"testing"
	"time"

	"exampulse/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "LOG_LEVEL", "DATA_SOURCE", "DATA_FILE", "DATABASE_URL",
		"LOAD_TIMEOUT", "FIXTURE_DELAY", "CACHE_ENABLED", "DISPLAY_PRECISION",
		"PPROF_ENABLED", "PPROF_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, SourceFixture, cfg.Data.Source)
	assert.Equal(t, 5*time.Second, cfg.Data.LoadTimeout)
	assert.Equal(t, time.Duration(0), cfg.Data.FixtureDelay)
	assert.True(t, cfg.Data.CacheEnabled)
	assert.Equal(t, 2, cfg.Display.Precision)
	assert.False(t, cfg.Profiling.Enabled)
	assert.Equal(t, "6060", cfg.Profiling.Port)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_SOURCE", "FILE")
	t.Setenv("DATA_FILE", "students.csv")
	t.Setenv("FIXTURE_DELAY", "800ms")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("DISPLAY_PRECISION", "3")
	t.Setenv("LOAD_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, "students.csv", cfg.Data.File)
	assert.Equal(t, 800*time.Millisecond, cfg.Data.FixtureDelay)
	assert.False(t, cfg.Data.CacheEnabled)
	assert.Equal(t, 3, cfg.Display.Precision)
	assert.Equal(t, 5*time.Second, cfg.Data.LoadTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"file without path":    {"DATA_SOURCE": "file"},
		"postgres without url": {"DATA_SOURCE": "postgres"},
		"unknown source":       {"DATA_SOURCE": "s3"},
		"negative precision":   {"DISPLAY_PRECISION": "-1"},
		"non positive timeout": {"LOAD_TIMEOUT": "-2s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
