package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Backends are the supported account stores.
const (
	BackendDir     = "dir"
	BackendMem     = "mem"
	BackendLevelDB = "leveldb"
)

type Config struct {
	// DataDir holds account files (dir), the LevelDB database (leveldb) and
	// journals.
	DataDir string `toml:"DataDir"`
	Backend string `toml:"Backend"`
	// Journal records every committed invocation.
	Journal   bool   `toml:"Journal"`
	LogLevel  string `toml:"LogLevel"`
	LogFormat string `toml:"LogFormat"`
}

func Default() *Config {
	return &Config{
		DataDir:   "pricedb.data",
		Backend:   BackendDir,
		Journal:   true,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the TOML configuration at path over the defaults. A missing file
// gives the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendDir, BackendMem, BackendLevelDB:
	default:
		return fmt.Errorf("unknown backend %q (dir|mem|leveldb)", c.Backend)
	}
	if c.Backend != BackendMem && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("backend %s needs a DataDir", c.Backend)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (text|json)", c.LogFormat)
	}
	return nil
}

// ConfigureLogging applies the log level and format to the standard logrus
// logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{})
	}
	return nil
}
