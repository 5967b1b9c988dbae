// Package discovery locates worker projects in a monorepo by scanning for
// wrangler configuration files and extracting their KV namespace bindings.
package discovery

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/kvpeek/kvpeek/pkg/types"
)

// configNames are the wrangler configuration files a project is
// recognized by.
var configNames = []string{"wrangler.toml", "wrangler.json"}

// skipDirNames prunes the walk out of dependency trees and runtime state.
var skipDirNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".wrangler":    true,
	"dist":         true,
}

// wranglerConfig is the subset of a wrangler configuration this tool reads.
type wranglerConfig struct {
	Name         string        `toml:"name" json:"name"`
	KVNamespaces []kvNamespace `toml:"kv_namespaces" json:"kv_namespaces"`
}

type kvNamespace struct {
	Binding string `toml:"binding" json:"binding"`
	ID      string `toml:"id" json:"id"`
}

// Scanner discovers worker projects under a monorepo root.
type Scanner struct {
	log      *zap.Logger
	excludes []string
}

// NewScanner creates a Scanner. Excludes are doublestar globs matched
// against config file paths relative to the scan root, on top of the
// always-pruned directories (node_modules, .git, .wrangler, dist).
func NewScanner(log *zap.Logger, excludes []string) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log, excludes: excludes}
}

// Scan walks root for wrangler configuration files and returns one Project
// per directory holding one, sorted by path. A malformed configuration is
// logged and skipped so one broken project never hides the others; only a
// failure to walk the tree itself is an error.
func (s *Scanner) Scan(root string) ([]types.Project, error) {
	projects := make([]types.Project, 0)
	seen := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if rel != "." && skipDirNames[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !isConfigName(d.Name()) || s.excluded(rel) {
			return nil
		}

		dir := filepath.Dir(path)
		// A directory with both wrangler.toml and wrangler.json keeps
		// whichever the walk visited first.
		if seen[dir] {
			return nil
		}

		project, parseErr := s.loadProject(dir, path)
		if parseErr != nil {
			s.log.Warn("failed to parse wrangler config",
				zap.String("path", path), zap.Error(parseErr))
			return nil
		}
		seen[dir] = true
		projects = append(projects, project)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Path < projects[j].Path })
	return projects, nil
}

func (s *Scanner) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isConfigName(name string) bool {
	for _, candidate := range configNames {
		if name == candidate {
			return true
		}
	}
	return false
}

// loadProject parses one configuration file into a Project. Bindings with
// no namespace id (common for preview-only setups) are dropped: nothing
// can be resolved for them.
func (s *Scanner) loadProject(dir, configPath string) (types.Project, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return types.Project{}, err
	}

	var cfg wranglerConfig
	switch filepath.Ext(configPath) {
	case ".toml":
		err = toml.Unmarshal(content, &cfg)
	case ".json":
		err = json.Unmarshal(content, &cfg)
	default:
		err = fmt.Errorf("unsupported config format %q", filepath.Ext(configPath))
	}
	if err != nil {
		return types.Project{}, err
	}

	name := cfg.Name
	if name == "" {
		name = filepath.Base(dir)
	}

	bindings := make([]types.NamespaceBinding, 0, len(cfg.KVNamespaces))
	for _, ns := range cfg.KVNamespaces {
		if ns.ID == "" || ns.Binding == "" {
			continue
		}
		bindings = append(bindings, types.NamespaceBinding{Binding: ns.Binding, ID: ns.ID})
	}

	return types.Project{Name: name, Path: dir, Bindings: bindings}, nil
}
