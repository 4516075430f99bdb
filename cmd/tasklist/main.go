package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/tasklist/cmd/tasklist/commands"
)

// @title Task List API
// @version 1.0
// @description Stores a personal task list as a single JSON document.

// @license.name MIT

// @host localhost:3000
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:   "tasklist",
		Short: "Personal task tracker",
		Long:  `tasklist keeps a personal to-do list in one JSON file, served over HTTP and edited from the terminal.`,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a config file (yaml, json or toml)")

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewTUICommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
