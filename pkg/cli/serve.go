package cli

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/gqlbridge/pkg/config"
	"github.com/getmockd/gqlbridge/pkg/logging"
)

var serveFlags struct {
	configFile  string
	listen      string
	logLevel    string
	logFormat   string
	environment string
	schemaFile  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a GraphQL endpoint with the devtools bridge installed",
	Long: `Serve a GraphQL endpoint backed by the mock engine. Every request and result
passes through the devtools bridge, which caches it and relays it to panels
attached on the devtools websocket path.`,
	Example: `  # Serve using a config file
  gqlbridge serve --config gqlbridge.yaml

  # Serve a schema with defaults
  gqlbridge serve --schema schema.graphql --listen :4000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadServeConfig(cmd)
		if err != nil {
			return err
		}

		log, err := logging.FromSettings(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		if err != nil {
			return err
		}

		srv, err := newServer(cfg, log)
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
		}
		return srv.Serve(cmd.Context(), ln)
	},
}

// loadServeConfig loads the config file and environment, then applies flags
// the user set explicitly.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	path := serveFlags.configFile
	if path == "" {
		path = config.ConfigFileFromEnv()
	}

	cfg := &config.Config{}
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	config.LoadEnv(cfg)

	flags := cmd.Flags()
	set := func(name string, field *string, key, value string) {
		if flags.Changed(name) {
			*field = value
			cfg.Sources[key] = config.SourceFlag
		}
	}
	set("listen", &cfg.Listen, "listen", serveFlags.listen)
	set("log-level", &cfg.Log.Level, "log.level", strings.ToLower(serveFlags.logLevel))
	set("log-format", &cfg.Log.Format, "log.format", strings.ToLower(serveFlags.logFormat))
	set("env", &cfg.Environment, "environment", serveFlags.environment)
	set("schema", &cfg.Engine.SchemaFile, "engine.schemaFile", serveFlags.schemaFile)
	if flags.Changed("schema") {
		cfg.Engine.Schema = ""
	}

	return config.Finalize(cfg)
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&serveFlags.configFile, "config", "c", "", "Path to a YAML or JSON config file (env: GQLBRIDGE_CONFIG)")
	f.StringVarP(&serveFlags.listen, "listen", "l", config.DefaultListen, "HTTP listen address")
	f.StringVar(&serveFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&serveFlags.logFormat, "log-format", "text", "Log format (text, json)")
	f.StringVar(&serveFlags.environment, "env", "", "Environment; production disables the bridge")
	f.StringVar(&serveFlags.schemaFile, "schema", "", "GraphQL SDL schema file")
	rootCmd.AddCommand(serveCmd)
}
