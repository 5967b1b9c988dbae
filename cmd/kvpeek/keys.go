package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvpeek/kvpeek/internal/kv"
)

var keysCmd = &cobra.Command{
	Use:   "keys <project-path> <namespace-id>",
	Short: "List the keys in one KV namespace, sorted ascending",
	Args:  cobra.ExactArgs(2),
	RunE:  runKeys,
}

func runKeys(cmd *cobra.Command, args []string) error {
	_, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	projectPath, err := projectArg(args[0])
	if err != nil {
		return err
	}
	namespaceID := args[1]

	store := kv.NewStore(logger)
	defer func() { _ = store.Dispose() }()

	dbPath, err := store.Resolve(cmd.Context(), kv.StorageRoot(projectPath), namespaceID)
	if errors.Is(err, kv.ErrNotFound) {
		fmt.Printf("namespace %s has no local data under %s\n", namespaceID, projectPath)
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range store.ListEntries(cmd.Context(), dbPath) {
		if entry.Expiration != nil {
			fmt.Printf("%s\t(expires %s)\n", entry.Key, formatExpiration(*entry.Expiration))
			continue
		}
		fmt.Println(entry.Key)
	}
	return nil
}

// formatExpiration renders an epoch-milliseconds expiration timestamp.
func formatExpiration(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
