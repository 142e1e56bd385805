package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/naka-gawa/repo-lifecycle/internal/report"
	"github.com/spf13/cobra"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Prints code review metrics for the configured repository",
	Long:  `Folds over the repository's pull requests and prints review totals, the average review time in days and the number of distinct reviewers.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := runReviews(context.Background(), params, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reviewsCmd)
	reviewsCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

func runReviews(ctx context.Context, p runParams, w io.Writer) error {
	_, analyzer, err := newAnalyzer(ctx, p)
	if err != nil {
		return err
	}
	review := analyzer.AnalyzeCodeReviews(ctx)

	if p.format == "json" {
		jsonData, err := json.MarshalIndent(review, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal review metrics to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}
	_, err = fmt.Fprint(w, report.GenerateReviewReport(review))
	return err
}
