package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "mediactl",
		Short: "Simple Media administration CLI",
		Long: `Administration commands for the simple-media backend.

Configuration is read from the environment (DATABASE_URL, STORAGE_URL, ...)
and an optional .env file, the same way the server reads it.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewPingCommand())
	rootCmd.AddCommand(NewDashboardCommand())

	return rootCmd
}
