package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "school-api",
	Short: "School management API",
	Long: `Multi-tenant school management API: schools, classrooms and students
behind role-based access control. Running without a subcommand starts the server.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = serveCmd.RunE
}
