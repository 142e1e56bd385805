// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/naka-gawa/repo-lifecycle/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repo-lifecycle",
	Short: "Reports on the software lifecycle of a GitHub repository.",
	Long: `repo-lifecycle fetches a repository's metadata, commits, issues, branches
and pull requests from GitHub, prints a software lifecycle report and a list of
DevOps recommendations.

The repository is read from the project file's repository_url field. The
GITHUB_TOKEN environment variable must be set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := runAnalysis(context.Background(), params, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to the project file (JSON or YAML)")
	rootCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}
