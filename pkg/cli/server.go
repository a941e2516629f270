package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getmockd/gqlbridge/pkg/admin"
	"github.com/getmockd/gqlbridge/pkg/channel"
	"github.com/getmockd/gqlbridge/pkg/client"
	"github.com/getmockd/gqlbridge/pkg/config"
	"github.com/getmockd/gqlbridge/pkg/devtools"
	"github.com/getmockd/gqlbridge/pkg/mockengine"
)

const shutdownTimeout = 5 * time.Second

// server wires the engine, bridge, client and HTTP surface together.
type server struct {
	cfg     *config.Config
	log     *slog.Logger
	state   *devtools.State
	hub     *channel.Hub
	client  *client.Client
	handler http.Handler
}

func newServer(cfg *config.Config, log *slog.Logger) (*server, error) {
	engine, err := mockengine.New(cfg.Engine, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	s := &server{
		cfg:   cfg,
		log:   log,
		state: devtools.NewState(),
	}

	mode := cfg.Mode()
	var ch channel.Channel
	if mode != devtools.ModeProduction {
		s.hub = channel.NewHub(channel.HubOptions{
			Outbox:         cfg.Devtools.Outbox,
			OriginPatterns: cfg.Devtools.OriginPatterns,
			Logger:         log,
		})
		ch = s.hub
	}

	s.client = client.New(client.Options{
		Exchanges: []client.Exchange{
			devtools.NewExchange(devtools.Options{
				Channel: ch,
				State:   s.state,
				Mode:    mode,
				Logger:  log,
			}),
			engine.Exchange(),
		},
		Logger: log,
	})

	mux := http.NewServeMux()
	opts := []admin.Option{
		admin.WithClient(s.client),
		admin.WithLogger(log),
		admin.WithPaths(cfg.Devtools.EventsPath, cfg.Devtools.StatePath, cfg.GraphQLPath),
	}
	if s.hub != nil {
		mux.Handle("GET "+cfg.Devtools.Path, s.hub)
		opts = append(opts, admin.WithPanels(s.hub))
	}
	admin.New(s.state, opts...).Register(mux)
	s.handler = mux

	return s, nil
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down.
func (s *server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.Info("gqlbridge listening",
		"addr", ln.Addr().String(),
		"mode", s.cfg.Mode(),
		"devtools", s.cfg.Devtools.Path,
		"graphql", s.cfg.GraphQLPath,
	)

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.hub != nil {
		_ = s.hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	_ = s.client.Close()

	s.log.Info("gqlbridge stopped")
	return serveErr
}
