package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/review-agent/internal/config"
	"github.com/sevigo/review-agent/internal/core"
	"github.com/sevigo/review-agent/internal/llm"
	"github.com/sevigo/review-agent/internal/logger"
	"github.com/sevigo/review-agent/internal/review"
)

var verbose bool

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Run a staged code review for a local source file",
	Long: `Run a staged code review for a local source file.

The review command sends the file through the three pipeline stages
(analysis, issue extraction, report synthesis) against the configured
model server and prints the result.

Examples:
  reviewctl review main.go
  reviewctl review --verbose --model codellama:latest main.go`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	filePath := args[0]

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if modelName != "" {
		cfg.ModelName = modelName
	}
	if ollamaHost != "" {
		cfg.OllamaHost = ollamaHost
	}

	logLevel := "error"
	if verbose {
		logLevel = "debug"
	}
	log := logger.NewLogger(logger.Config{Level: logLevel, Format: "text", Output: "stderr"}, nil)

	code, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	client := llm.NewOllamaClient(cfg.OllamaHost, cfg.ModelName, cfg.Temperature, log,
		llm.WithMaxTokens(cfg.MaxTokens),
	)
	prompts, err := llm.NewPromptManager()
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	pipeline := review.NewPipeline(client, prompts, log)

	titleColor.Println("Review Agent - Code Review")
	dimColor.Printf("   Target: %s (model %s)\n\n", filePath, cfg.ModelName)

	fmt.Println("Running analysis, issue extraction, and report stages...")
	start := time.Now()

	state, err := pipeline.Review(ctx, string(code))
	if err != nil {
		return fmt.Errorf("review failed: %w\n\nTip: check that the model server is running at %s", err, cfg.OllamaHost)
	}

	if verbose {
		dimColor.Printf("Total time: %s\n", time.Since(start).Round(time.Millisecond))
	}

	printResult(state)
	return nil
}

func printResult(state *core.ReviewState) {
	separator := strings.Repeat("═", 60)
	thinSeparator := strings.Repeat("─", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println("ANALYSIS")
	titleColor.Println(separator)
	fmt.Println()
	infoColor.Println(strings.TrimSpace(state.Analysis))

	fmt.Println()
	if len(state.Issues) == 1 && state.Issues[0] == core.NoIssuesSentinel {
		successColor.Println("No issues found")
	} else {
		warnColor.Println(thinSeparator)
		warnColor.Printf("ISSUES (%d)\n", len(state.Issues))
		warnColor.Println(thinSeparator)
		for _, issue := range state.Issues {
			infoColor.Println(issue)
		}
	}

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println("REPORT")
	titleColor.Println(separator)

	// The report is markdown most of the time; fall back to plain
	// output when rendering fails.
	rendered, err := glamour.Render(state.Report, "dark")
	if err != nil {
		fmt.Println(strings.TrimSpace(state.Report))
		return
	}
	fmt.Print(rendered)
}
