package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "tracker/docs"
)

// @title           Tracker API
// @version         1.0
// @description     Projects, tasks and subtasks with drag-to-reorder ordering.

// @host      localhost:8080
// @BasePath  /

// @schemes http
func main() {
	rootCmd := &cobra.Command{
		Use:   "tracker",
		Short: "Personal project and task tracker",
	}
	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
