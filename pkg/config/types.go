package config

import (
	"github.com/getmockd/gqlbridge/pkg/channel"
	"github.com/getmockd/gqlbridge/pkg/devtools"
	"github.com/getmockd/gqlbridge/pkg/mockengine"
)

// Source values recorded in Config.Sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Default values.
const (
	DefaultListen     = "localhost:4000"
	DefaultPath       = "/__devtools"
	DefaultEventsPath = "/__devtools/events"
	DefaultStatePath  = "/__devtools/state"
	DefaultGraphQL    = "/graphql"
)

// Config is the server configuration.
type Config struct {
	// Environment selects the bridge mode; "production" disables it.
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`

	// Listen is the HTTP listen address.
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`

	// GraphQLPath is where application traffic is accepted.
	GraphQLPath string `json:"graphqlPath,omitempty" yaml:"graphqlPath,omitempty"`

	Devtools DevtoolsConfig    `json:"devtools" yaml:"devtools"`
	Log      LogConfig         `json:"log" yaml:"log"`
	Engine   mockengine.Config `json:"engine" yaml:"engine"`

	// Sources records where each non-default value came from.
	Sources map[string]string `json:"-" yaml:"-"`

	// envErrs holds environment values LoadEnv could not apply.
	envErrs []error
}

// DevtoolsConfig configures the panel endpoints.
type DevtoolsConfig struct {
	// Path is the websocket endpoint panels connect to.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// EventsPath serves the event cache.
	EventsPath string `json:"eventsPath,omitempty" yaml:"eventsPath,omitempty"`

	// StatePath serves the inspection state summary.
	StatePath string `json:"statePath,omitempty" yaml:"statePath,omitempty"`

	// Outbox is the per-panel message buffer; overflow is dropped.
	Outbox int `json:"outbox,omitempty" yaml:"outbox,omitempty"`

	// OriginPatterns lists allowed websocket origins. Empty allows any.
	OriginPatterns []string `json:"originPatterns,omitempty" yaml:"originPatterns,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Mode reports the bridge mode selected by Environment.
func (c *Config) Mode() devtools.Mode {
	return devtools.ParseMode(c.Environment)
}

func (c *Config) applyDefaults() {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	setDefault(c, &c.Environment, "environment", string(devtools.ModeDevelopment))
	setDefault(c, &c.Listen, "listen", DefaultListen)
	setDefault(c, &c.GraphQLPath, "graphqlPath", DefaultGraphQL)
	setDefault(c, &c.Devtools.Path, "devtools.path", DefaultPath)
	setDefault(c, &c.Devtools.EventsPath, "devtools.eventsPath", DefaultEventsPath)
	setDefault(c, &c.Devtools.StatePath, "devtools.statePath", DefaultStatePath)
	setDefault(c, &c.Log.Level, "log.level", "info")
	setDefault(c, &c.Log.Format, "log.format", "text")
	if c.Devtools.Outbox == 0 {
		c.Devtools.Outbox = channel.DefaultOutbox
		c.Sources["devtools.outbox"] = SourceDefault
	}
}

func setDefault(c *Config, field *string, key, value string) {
	if *field == "" {
		*field = value
		c.Sources[key] = SourceDefault
	}
}
