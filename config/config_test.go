package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "pricedb.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)
	path := writeConfig(t, `
DataDir = "/var/lib/pricedb"
Backend = "leveldb"
Journal = false
LogLevel = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal("/var/lib/pricedb", cfg.DataDir)
	assert.Equal(BackendLevelDB, cfg.Backend)
	assert.False(cfg.Journal)
	assert.Equal("debug", cfg.LogLevel)
	assert.Equal("text", cfg.LogFormat, "unset keys keep their defaults")
}

func TestLoadRejects(t *testing.T) {
	for name, contents := range map[string]string{
		"unknown key":     `MetricsAddress = ":9090"`,
		"unknown backend": `Backend = "postgres"`,
		"bad level":       `LogLevel = "loud"`,
		"bad format":      `LogFormat = "xml"`,
		"empty data dir":  `DataDir = ""`,
		"not toml":        `Backend = `,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, contents))
			assert.Error(t, err)
		})
	}
}

func TestMemBackendNeedsNoDataDir(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendMem
	cfg.DataDir = ""
	assert.NoError(t, cfg.Validate())
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	require.NoError(t, cfg.ConfigureLogging())
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	log.SetFormatter(&log.TextFormatter{})
}
