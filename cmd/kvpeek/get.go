package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvpeek/kvpeek/internal/kv"
)

var getCmd = &cobra.Command{
	Use:   "get <project-path> <namespace-id> <key>",
	Short: "Print the stored value for a key",
	Args:  cobra.ExactArgs(3),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	_, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	projectPath, err := projectArg(args[0])
	if err != nil {
		return err
	}
	namespaceID, key := args[1], args[2]

	store := kv.NewStore(logger)
	defer func() { _ = store.Dispose() }()

	value, err := store.GetValue(cmd.Context(), projectPath, namespaceID, key)
	if errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("key %q not found in namespace %s", key, namespaceID)
	}
	if err != nil {
		return err
	}

	// Raw value to stdout, no trailing newline added, so binary-ish
	// payloads survive a pipe.
	fmt.Print(value)
	return nil
}
