package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Load builds a configuration from path (optional), the environment and
// defaults, then validates it. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	LoadEnv(cfg)
	return Finalize(cfg)
}

// Finalize applies defaults to unset fields and validates cfg.
func Finalize(cfg *Config) (*Config, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromFile reads a configuration from a JSON or YAML file.
// The format is detected from the extension (.yaml, .yml for YAML, otherwise JSON).
// Defaults are not applied.
func LoadFromFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var cfg *Config
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		cfg, err = ParseYAML(data)
	} else {
		cfg, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Relative schema files resolve against the config file's directory.
	if f := cfg.Engine.SchemaFile; f != "" && !filepath.IsAbs(f) {
		cfg.Engine.SchemaFile = filepath.Join(filepath.Dir(path), f)
	}
	return cfg, nil
}

// ParseJSON decodes a JSON configuration document.
func ParseJSON(data []byte) (*Config, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	cfg.markFile()
	return cfg, nil
}

// ParseYAML decodes a YAML configuration document.
func ParseYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	cfg.markFile()
	return cfg, nil
}

// ToYAML marshals a configuration to YAML.
func ToYAML(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return data, nil
}

func (c *Config) markFile() {
	c.Sources = make(map[string]string)
	mark := func(key string, set bool) {
		if set {
			c.Sources[key] = SourceFile
		}
	}
	mark("environment", c.Environment != "")
	mark("listen", c.Listen != "")
	mark("graphqlPath", c.GraphQLPath != "")
	mark("devtools.path", c.Devtools.Path != "")
	mark("devtools.eventsPath", c.Devtools.EventsPath != "")
	mark("devtools.statePath", c.Devtools.StatePath != "")
	mark("devtools.outbox", c.Devtools.Outbox != 0)
	mark("log.level", c.Log.Level != "")
	mark("log.format", c.Log.Format != "")
	mark("engine.schema", c.Engine.Schema != "")
	mark("engine.schemaFile", c.Engine.SchemaFile != "")
}
