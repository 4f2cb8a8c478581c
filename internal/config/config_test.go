package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

const sampleConfig = `
read-structures:
  - 8M+T
  - 8B
  - +T
sample: NA12878
library: lib-1
workers: 4
tags:
  umi: ZU
log-level: debug
`

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "A", cfg.ReadGroupID)
	assert.Equal(t, "ILLUMINA", cfg.Platform)
	assert.Equal(t, "RX", cfg.Tags.UMI)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, -1, cfg.CompressionLevel)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "readstructure.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.ReadStructures, 3)
	assert.Equal(t, "8M+T", cfg.ReadStructures[0].String())
	assert.Equal(t, "8B", cfg.ReadStructures[1].String())
	assert.Equal(t, "NA12878", cfg.Sample)
	assert.Equal(t, "lib-1", cfg.Library)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Keys missing from the file keep their defaults.
	assert.Equal(t, "ZU", cfg.Tags.UMI)
	assert.Equal(t, "QX", cfg.Tags.UMIQual)
	assert.Equal(t, "A", cfg.ReadGroupID)

	opts := cfg.Options()
	templates, err := opts.Validate()
	require.NoError(t, err)
	assert.Equal(t, 2, templates)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Parse([]byte("read-structures: [8X]\n"))
	require.ErrorIs(t, err, readstructure.ErrUnknownKind)

	_, err = Parse([]byte("unknown-key: 1\n"))
	require.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"READSTRUCTURE_LOG_LEVEL":       "warn",
		"READSTRUCTURE_SAMPLE":          "s2",
		"READSTRUCTURE_LIBRARY":         " l2 ",
		"READSTRUCTURE_READ_GROUP_ID":   "RG9",
		"READSTRUCTURE_WORKERS":         "7",
		"READSTRUCTURE_READ_STRUCTURES": "+T,8B,+T",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, loadFromLookup(cfg, lookup))
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "s2", cfg.Sample)
	assert.Equal(t, "l2", cfg.Library)
	assert.Equal(t, "RG9", cfg.ReadGroupID)
	assert.Equal(t, 7, cfg.Workers)
	require.Len(t, cfg.ReadStructures, 3)
	assert.Equal(t, "8B", cfg.ReadStructures[1].String())
}

func TestLoadFromEnvErrors(t *testing.T) {
	t.Parallel()

	for key, value := range map[string]string{
		"READSTRUCTURE_WORKERS":         "many",
		"READSTRUCTURE_READ_STRUCTURES": "+T+T",
	} {
		lookup := func(k string) (string, bool) {
			if k == key {
				return value, true
			}
			return "", false
		}
		require.Error(t, loadFromLookup(Default(), lookup), key)
	}

	require.NoError(t, loadFromLookup(nil, nil))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log-level"},
		{"workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"batch size", func(c *Config) { c.BatchSize = 0 }, "batch-size"},
		{"compression", func(c *Config) { c.CompressionLevel = 12 }, "compression-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
