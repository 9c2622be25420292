// Package mcp provides an MCP (Model Context Protocol) server exposing the
// estimation engine as tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/samplespace/internal/config"
	"github.com/nvandessel/samplespace/internal/logging"
	"github.com/nvandessel/samplespace/internal/ratelimit"
	"github.com/nvandessel/samplespace/internal/runner"
	"github.com/nvandessel/samplespace/internal/store"
)

// Server wraps the MCP SDK server and the estimation runner.
type Server struct {
	server       *sdk.Server
	runner       *runner.Runner
	history      store.RunStore // nil when history is disabled
	runLog       *logging.RunLog
	logger       *slog.Logger
	root         string
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name     string         // Server name (e.g., "samplespace")
	Version  string         // Server version
	Root     string         // Project root directory; its .samplespace holds the run log
	Settings *config.Config // nil uses config.Default()
	Logger   *slog.Logger   // nil discards
}

// NewServer creates a new MCP server with samplespace tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var history store.RunStore
	if settings.History.Enabled {
		path, err := settings.HistoryPath()
		if err != nil {
			return nil, err
		}
		sqlStore, err := store.NewSQLiteRunStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		history = sqlStore
	}

	var runLog *logging.RunLog
	if cfg.Root != "" {
		runLog = logging.NewRunLog(store.LocalDir(cfg.Root), settings.Logging.Level)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server: mcpServer,
		runner: runner.New(runner.Options{
			Sampling: settings.Sampling,
			History:  history,
			RunLog:   runLog,
			Logger:   logger,
		}),
		history:      history,
		runLog:       runLog,
		logger:       logger,
		root:         cfg.Root,
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close closes the server and releases resources. It is safe to call more
// than once.
func (s *Server) Close() error {
	s.runLog.Close()
	if s.history == nil {
		return nil
	}
	err := s.history.Close()
	s.history = nil
	return err
}
