package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/resourcepro/internal/store"
)

func newImportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import resources, projects, tasks and assignments from YAML",
		Long: `Imports a YAML dataset in a single transaction. Resources are created first,
so task assignments and time entries may reference them by name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, path string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	sum, err := store.ImportFile(gormDB, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d resources, %d projects, %d tasks, %d assignments, %d time entries\n",
		sum.Resources, sum.Projects, sum.Tasks, sum.Assignments, sum.TimeEntries)
	return nil
}
