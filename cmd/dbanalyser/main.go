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
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:   "dbanalyser",
		Short: "Analyse a MySQL schema and detect changes",
		Long: `dbanalyser reads the information_schema catalog of one MySQL or MariaDB
database and prints a normalised model of its tables, views, procedures and
functions as JSON.

Examples:
  dbanalyser analyse --dsn 'user:pass@tcp(localhost:3306)/shop'
  dbanalyser snapshot -c dbanalyser.yaml
  dbanalyser analyse --archive -c dbanalyser.yaml && dbanalyser changes -c dbanalyser.yaml
  dbanalyser serve -c dbanalyser.yaml`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "MySQL DSN (overrides config and DBANALYSER_DSN)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newAnalyseCmd(&opts),
		newSnapshotCmd(&opts),
		newChangesCmd(&opts),
		newServeCmd(&opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "dbanalyser %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
