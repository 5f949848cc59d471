package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "civicfeed",
	Short: "Congressional activity sync and feed service",
	Long: `civicfeed keeps a relational store of congressional bills, roll-call
votes, and per-member vote positions in sync with the Congress.gov API,
and serves a per-user activity feed over the result.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// A missing .env file is fine; real deployments set env directly
	cobra.OnInitialize(func() {
		_ = godotenv.Load()
	})
}
