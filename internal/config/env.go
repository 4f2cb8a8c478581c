package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

// EnvPrefix is the prefix for all environment overrides.
const EnvPrefix = "READSTRUCTURE_"

// LoadFromEnv applies READSTRUCTURE_* environment overrides to cfg.
func LoadFromEnv(cfg *Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	get := func(suffix string) (string, bool) {
		v, ok := lookup(EnvPrefix + suffix)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("SAMPLE"); ok {
		cfg.Sample = v
	}
	if v, ok := get("LIBRARY"); ok {
		cfg.Library = v
	}
	if v, ok := get("READ_GROUP_ID"); ok {
		cfg.ReadGroupID = v
	}
	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer for %sWORKERS: %q", EnvPrefix, v)
		}
		cfg.Workers = n
	}
	if v, ok := get("READ_STRUCTURES"); ok {
		structures, err := ParseStructures(strings.Split(v, ","))
		if err != nil {
			return fmt.Errorf("invalid %sREAD_STRUCTURES: %w", EnvPrefix, err)
		}
		cfg.ReadStructures = structures
	}

	return nil
}

// ParseStructures parses each string as a read structure.
func ParseStructures(values []string) ([]readstructure.ReadStructure, error) {
	structures := make([]readstructure.ReadStructure, 0, len(values))
	for _, v := range values {
		rs, err := readstructure.Parse(v)
		if err != nil {
			return nil, err
		}
		structures = append(structures, rs)
	}
	return structures, nil
}
