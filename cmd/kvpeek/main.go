// Package main implements the kvpeek CLI for browsing locally persisted
// Cloudflare Workers KV data in a monorepo.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kvpeek/kvpeek/internal/config"
	"github.com/kvpeek/kvpeek/internal/kv"
	"github.com/kvpeek/kvpeek/internal/logging"
)

var (
	version   = "dev"
	buildTime = "unknown"

	flagConfig   string
	flagRoot     string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kvpeek",
	Short: "Browse local Workers KV data across a monorepo",
	Long: `kvpeek inspects the KV data that wrangler dev persists on disk.
It discovers worker projects by their wrangler configuration, resolves
which local database backs each KV namespace, and lets you list keys,
fetch values, and search across every namespace at once.

All access is read-only.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/kvpeek/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "monorepo root to scan (default current directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(searchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kvpeek\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", kv.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", kv.DriverName)
	},
}

// setup loads configuration, applies flag overrides, and builds the
// logger. Logs go to stderr so command output stays pipe-friendly.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	if flagRoot != "" {
		root, err := filepath.Abs(flagRoot)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid root %q: %w", flagRoot, err)
		}
		cfg.Root = root
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, logger, nil
}

// projectArg normalizes a project path argument to an absolute path.
func projectArg(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid project path %q: %w", path, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("project path %q is not a directory", path)
	}
	return abs, nil
}
