package importer

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrDatabaseRequired = errors.New("importer: database connection string is required")
	ErrInvalidDuration  = errors.New("importer: invalid duration")
)

// Config is the import-subsystem configuration.
type Config struct {
	// Database is the postgres connection string.
	Database string

	// ProgramCacheTTL bounds the staleness of the program cache.
	ProgramCacheTTL time.Duration

	// UserGroupCacheTTL and UserGroupCacheSize shape the group
	// membership cache.
	UserGroupCacheTTL  time.Duration
	UserGroupCacheSize int
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Database           string `yaml:"database"`
		ProgramCacheTTL    string `yaml:"program_cache_ttl"`
		UserGroupCacheTTL  string `yaml:"user_group_cache_ttl"`
		UserGroupCacheSize int    `yaml:"user_group_cache_size"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Database == "" {
		return ErrDatabaseRequired
	}

	progTTL, err := parseTTL(raw.ProgramCacheTTL)
	if err != nil {
		return err
	}
	groupTTL, err := parseTTL(raw.UserGroupCacheTTL)
	if err != nil {
		return err
	}
	if raw.UserGroupCacheSize < 0 {
		return fmt.Errorf("importer: user_group_cache_size must not be negative: %d", raw.UserGroupCacheSize)
	}

	c.Database = raw.Database
	c.ProgramCacheTTL = progTTL
	c.UserGroupCacheTTL = groupTTL
	c.UserGroupCacheSize = raw.UserGroupCacheSize
	return nil
}

func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil // 0 = use the cache package default
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative: %s", ErrInvalidDuration, s)
	}
	return d, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := &Config{}
	if err := yaml.Unmarshal(buf, conf); err != nil {
		return nil, err
	}
	return conf, nil
}
