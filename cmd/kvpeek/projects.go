package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvpeek/kvpeek/internal/discovery"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List worker projects and their KV namespace bindings",
	RunE:  runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	scanner := discovery.NewScanner(logger, cfg.Discovery.Excludes)
	projects, err := scanner.Scan(cfg.Root)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Printf("no worker projects found under %s\n", cfg.Root)
		return nil
	}

	for _, project := range projects {
		fmt.Printf("%s  (%s)\n", project.Name, project.Path)
		if len(project.Bindings) == 0 {
			fmt.Println("  no KV bindings")
			continue
		}
		for _, binding := range project.Bindings {
			fmt.Printf("  %s  %s\n", binding.Binding, binding.ID)
		}
	}
	return nil
}
