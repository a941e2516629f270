// Package mockengine answers GraphQL operations from a schema and static
// resolver configuration.
//
// The engine is a terminal client exchange: it validates each operation
// against the schema with gqlparser, resolves the top-level fields from
// configured resolvers and emits results. It lets the devtools bridge run
// end-to-end without a real backend.
//
//	engine, err := mockengine.New(mockengine.Config{
//	    Schema: `type Query { user(id: ID!): User } type User { id: ID! name: String }`,
//	    Resolvers: map[string][]mockengine.ResolverConfig{
//	        "Query.user": {{Response: map[string]any{"id": "{{args.id}}", "name": "Ada"}}},
//	    },
//	}, logger)
//
// Resolver keys are "<RootType>.<field>". A resolver can return a response,
// a GraphQL error, a network error, or, for subscription fields, a list of
// events delivered as separate results.
package mockengine
