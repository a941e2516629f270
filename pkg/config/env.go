package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/getmockd/gqlbridge/pkg/devtools"
)

// Environment variable names
const (
	EnvConfig     = "GQLBRIDGE_CONFIG"
	EnvListen     = "GQLBRIDGE_LISTEN"
	EnvLogLevel   = "GQLBRIDGE_LOG_LEVEL"
	EnvLogFormat  = "GQLBRIDGE_LOG_FORMAT"
	EnvOutbox     = "GQLBRIDGE_OUTBOX"
	EnvSchemaFile = "GQLBRIDGE_SCHEMA_FILE"
)

// LoadEnv applies environment overrides to cfg.
// It only sets values that are present in the environment. Values that cannot
// be parsed are left unapplied and reported by Validate.
func LoadEnv(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	// GQLBRIDGE_ENV, then GO_ENV
	if v := os.Getenv(devtools.EnvMode); v != "" {
		cfg.Environment = v
		cfg.Sources["environment"] = SourceEnv
	} else if v := os.Getenv(devtools.EnvModeFallback); v != "" {
		cfg.Environment = v
		cfg.Sources["environment"] = SourceEnv
	}

	if v := os.Getenv(EnvListen); v != "" {
		cfg.Listen = v
		cfg.Sources["listen"] = SourceEnv
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
		cfg.Sources["log.level"] = SourceEnv
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
		cfg.Sources["log.format"] = SourceEnv
	}

	if v := os.Getenv(EnvOutbox); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			cfg.envErrs = append(cfg.envErrs, &ValidationError{
				Field:   "devtools.outbox",
				Message: fmt.Sprintf("%s must be an integer, got %q", EnvOutbox, v),
			})
		} else {
			cfg.Devtools.Outbox = n
			cfg.Sources["devtools.outbox"] = SourceEnv
		}
	}

	if v := os.Getenv(EnvSchemaFile); v != "" {
		cfg.Engine.SchemaFile = v
		cfg.Sources["engine.schemaFile"] = SourceEnv
	}
}

// ConfigFileFromEnv returns the config file named by GQLBRIDGE_CONFIG.
func ConfigFileFromEnv() string {
	return os.Getenv(EnvConfig)
}
