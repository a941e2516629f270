// Package config loads the gqlbridge server configuration.
//
// Configuration comes from, in increasing precedence: built-in defaults, a
// JSON or YAML file, and GQLBRIDGE_* environment variables. The origin of each
// overridden value is recorded in Config.Sources.
//
//	cfg, err := config.Load("gqlbridge.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A minimal YAML file:
//
//	environment: development
//	listen: localhost:4000
//	log:
//	  level: debug
//	engine:
//	  schemaFile: schema.graphql
//	  resolvers:
//	    Query.user:
//	      - response: {id: "{{args.id}}", name: Ada}
package config
