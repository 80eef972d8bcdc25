package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "teamboard",
		Short: "Team Board - Task tracking dashboard for agent teams",
		Long: `Team Board tracks tasks, agents and projects in a local SQLite
database and serves a single-page status dashboard. It can also
auto-assign open tasks to idle agents and generate daily reports.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
