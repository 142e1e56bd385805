package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/naka-gawa/repo-lifecycle/internal/config"
	"github.com/naka-gawa/repo-lifecycle/internal/domain"
	"github.com/naka-gawa/repo-lifecycle/internal/gateway"
	"github.com/naka-gawa/repo-lifecycle/internal/recommend"
	"github.com/naka-gawa/repo-lifecycle/internal/report"
	"github.com/naka-gawa/repo-lifecycle/internal/usecase"
	"github.com/spf13/cobra"
)

const dotenvPath = ".env"

// runParams carries everything a command needs, so the pipeline can run without cobra or the process environment.
type runParams struct {
	configPath string
	format     string
	getenv     func(string) string
	logger     *log.Logger
}

func paramsFromFlags(cmd *cobra.Command) (runParams, error) {
	// Verbose output goes to stderr; otherwise logs are discarded.
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}

	configPath, _ := cmd.Flags().GetString("config")
	format := "text"
	if f := cmd.Flags().Lookup("format"); f != nil {
		format = f.Value.String()
	}
	if format != "text" && format != "json" {
		return runParams{}, fmt.Errorf("unknown format %q (want text or json)", format)
	}

	getenv, err := layeredEnv(os.LookupEnv, dotenvPath)
	if err != nil {
		return runParams{}, err
	}

	return runParams{
		configPath: configPath,
		format:     format,
		getenv:     getenv,
		logger:     logger,
	}, nil
}

// layeredEnv resolves variables from the process environment first and the
// dotenv file second. A missing dotenv file is not an error.
func layeredEnv(lookup func(string) (string, bool), path string) (func(string) string, error) {
	fileEnv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		fileEnv = map[string]string{}
	}
	return func(key string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return fileEnv[key]
	}, nil
}

// newAnalyzer loads configuration, wires the gateway and loads the repository snapshot.
func newAnalyzer(ctx context.Context, p runParams) (*config.Config, *usecase.Analyzer, error) {
	cfg, err := config.Load(p.configPath, p.getenv)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AIKey != "" {
		p.logger.Printf("%s is set; the completion service is not used by this analysis.", config.AIKeyEnv)
	}

	ref, err := domain.ParseReference(cfg.Project.RepositoryURL)
	if err != nil {
		return nil, nil, &config.Error{Path: p.configPath, Err: err}
	}

	githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, gateway.Options{
		BaseURL:           cfg.Project.Settings.APIBaseURL,
		RequestsPerSecond: cfg.Project.Settings.RequestsPerSecond,
	}, p.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	analyzer := usecase.NewAnalyzer(githubGateway, ref, usecase.OptionsFromSettings(cfg.Project.Settings), p.logger)
	if err := analyzer.Load(ctx); err != nil {
		return nil, nil, err
	}
	return cfg, analyzer, nil
}

// runAnalysis performs one analysis-and-report cycle and writes the result to w.
func runAnalysis(ctx context.Context, p runParams, w io.Writer) error {
	cfg, analyzer, err := newAnalyzer(ctx, p)
	if err != nil {
		return err
	}
	repo, err := analyzer.Repository()
	if err != nil {
		return err
	}

	results, err := analyzer.AnalyzeLifecycle(ctx, cfg.Project)
	if err != nil {
		return err
	}
	gitMetrics := analyzer.AnalyzeGitMetrics()
	security := analyzer.AnalyzeSecurity()
	recommendations := recommend.SuggestImprovements(results.Flags())

	if p.format == "json" {
		doc := report.Document{
			Repository:      repo,
			Stages:          results,
			GitMetrics:      gitMetrics,
			CiCd:            analyzer.AnalyzeCiCd(),
			CodeQuality:     analyzer.AnalyzeCodeQuality(),
			TestingCoverage: analyzer.AnalyzeTestingCoverage(),
			Security:        security,
			Recommendations: recommendations,
		}
		jsonData, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	fmt.Fprintln(w, report.GenerateSummary(cfg.Project.RepositoryURL, repo))
	lifecycleReport := report.GenerateReport(cfg.Project.RepositoryURL, results, gitMetrics, security)
	_, err = fmt.Fprintln(w, report.FormatOutput(lifecycleReport, recommendations))
	return err
}
