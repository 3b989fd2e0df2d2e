package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "site-analytics-service/docs"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Site analytics query and alerting service",
	Long: "Serves time-bucketed analytics queries over page-view events and " +
		"evaluates scheduled alerts against them.",
	SilenceUsage: true,
	// serve is the default
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (yaml, json or toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateAlertsCmd)
}

// @title			Site Analytics Service API
// @version		1.0
// @description	Time-bucketed site analytics queries and scheduled alerts.
// @BasePath		/
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
