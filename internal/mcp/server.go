package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kvpeek/kvpeek/internal/config"
	"github.com/kvpeek/kvpeek/internal/discovery"
	"github.com/kvpeek/kvpeek/internal/kv"
	"github.com/kvpeek/kvpeek/internal/search"
	"github.com/kvpeek/kvpeek/internal/watch"
	"github.com/kvpeek/kvpeek/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "kvpeek"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	log     *zap.Logger
	cfg     *config.Config
	scanner *discovery.Scanner
	store   *kv.Store
	index   *search.Index

	mu       sync.RWMutex
	projects []types.Project
}

// NewServer creates a new MCP server instance and runs the initial
// project scan under cfg.Root.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store := kv.NewStore(log)
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		log:     log,
		cfg:     cfg,
		scanner: discovery.NewScanner(log, cfg.Discovery.Excludes),
		store:   store,
		index:   search.New(store, log),
	}

	if _, err := s.Refresh(); err != nil {
		_ = store.Dispose()
		return nil, fmt.Errorf("initial project scan failed: %w", err)
	}

	s.registerTools()
	return s, nil
}

// Projects returns the most recently scanned project list.
func (s *Server) Projects() []types.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects
}

// Refresh rescans the monorepo root and drops cached state for every
// binding known before the scan. Namespace ids can move between database
// files when wrangler dev restarts, so stale resolutions must not survive
// a refresh.
func (s *Server) Refresh() ([]types.Project, error) {
	projects, err := s.scanner.Scan(s.cfg.Root)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.projects
	s.projects = projects
	s.mu.Unlock()

	for _, project := range previous {
		for _, binding := range project.Bindings {
			s.store.Invalidate(binding.ID)
		}
	}
	s.index.InvalidateCache()

	s.log.Info("scanned projects",
		zap.String("root", s.cfg.Root),
		zap.Int("count", len(projects)))
	return projects, nil
}

// Serve starts the MCP server on stdio and blocks until the client
// disconnects. Project directories are watched while serving; a debounced
// change triggers a refresh.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Dispose() }()

	watcher, err := watch.New(s.log, watch.DefaultDebounce)
	if err != nil {
		s.log.Warn("file watching disabled", zap.Error(err))
	} else {
		defer func() { _ = watcher.Close() }()
		s.watchProjects(watcher)

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go s.watchLoop(watchCtx, watcher)
	}

	return server.ServeStdio(s.mcp)
}

// watchProjects registers the scan root and each discovered project
// directory with the watcher.
func (s *Server) watchProjects(watcher *watch.Watcher) {
	watcher.Add(s.cfg.Root)
	for _, project := range s.Projects() {
		watcher.Add(project.Path)
	}
}

func (s *Server) watchLoop(ctx context.Context, watcher *watch.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-watcher.Events():
			if _, err := s.Refresh(); err != nil {
				s.log.Warn("refresh after filesystem change failed", zap.Error(err))
				continue
			}
			s.watchProjects(watcher)
		}
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(listProjectsTool(), s.handleListProjects)
	s.mcp.AddTool(listKeysTool(), s.handleListKeys)
	s.mcp.AddTool(getValueTool(), s.handleGetValue)
	s.mcp.AddTool(searchKVTool(), s.handleSearchKV)
	s.mcp.AddTool(refreshProjectsTool(), s.handleRefreshProjects)
}
