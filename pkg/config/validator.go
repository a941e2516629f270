package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/getmockd/gqlbridge/pkg/logging"
)

// ValidationError describes an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Validate checks the configuration. All problems are joined into one error.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.envErrs...)

	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		errs = append(errs, &ValidationError{Field: "listen", Message: err.Error()})
	}

	paths := map[string]string{
		"graphqlPath":         c.GraphQLPath,
		"devtools.path":       c.Devtools.Path,
		"devtools.eventsPath": c.Devtools.EventsPath,
		"devtools.statePath":  c.Devtools.StatePath,
	}
	seen := make(map[string]string, len(paths))
	for _, field := range []string{"graphqlPath", "devtools.path", "devtools.eventsPath", "devtools.statePath"} {
		p := paths[field]
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf("must start with /: %q", p)})
			continue
		}
		if other, ok := seen[p]; ok {
			errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf("duplicates %s: %q", other, p)})
			continue
		}
		seen[p] = field
	}

	if c.Devtools.Outbox < 0 {
		errs = append(errs, &ValidationError{Field: "devtools.outbox", Message: "must not be negative"})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)})
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, &ValidationError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)})
	}

	if c.Engine.Schema == "" && c.Engine.SchemaFile == "" {
		errs = append(errs, &ValidationError{Field: "engine", Message: "schema or schemaFile is required"})
	}

	return errors.Join(errs...)
}
