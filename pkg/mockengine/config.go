package mockengine

// Config configures an Engine.
type Config struct {
	// Schema is an inline GraphQL SDL schema.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// SchemaFile is a path to a GraphQL SDL file, used when Schema is empty.
	SchemaFile string `json:"schemaFile,omitempty" yaml:"schemaFile,omitempty"`

	// Resolvers maps field paths (e.g. "Query.user") to resolvers. The first
	// resolver whose Match accepts the call's arguments is used.
	Resolvers map[string][]ResolverConfig `json:"resolvers,omitempty" yaml:"resolvers,omitempty"`
}

// ResolverConfig configures how a root field is resolved.
type ResolverConfig struct {
	// Response is returned as the field value. Strings may reference
	// arguments as {{args.name}}.
	Response any `json:"response,omitempty" yaml:"response,omitempty"`

	// Events are streamed one result per event for subscription fields.
	Events []any `json:"events,omitempty" yaml:"events,omitempty"`

	// Delay is the simulated latency before answering (e.g. "100ms").
	Delay string `json:"delay,omitempty" yaml:"delay,omitempty"`

	// Match restricts this resolver to calls whose arguments equal these values.
	Match map[string]any `json:"match,omitempty" yaml:"match,omitempty"`

	// Error answers the field with a GraphQL error.
	Error *ErrorConfig `json:"error,omitempty" yaml:"error,omitempty"`

	// NetworkError fails the whole operation as a transport failure.
	NetworkError string `json:"networkError,omitempty" yaml:"networkError,omitempty"`
}

// ErrorConfig configures a GraphQL error.
type ErrorConfig struct {
	Message    string         `json:"message" yaml:"message"`
	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}
