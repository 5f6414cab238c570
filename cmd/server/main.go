package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canvas-dashboard",
	Short: "Role based dashboards over the Canvas LMS API",
	Long: `canvas-dashboard signs users in by email, works out whether they are a
student, teacher or advisor from their Canvas enrollments, and renders a
dashboard for that role. It also exposes an authenticated proxy to the
Canvas REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(whoisCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
