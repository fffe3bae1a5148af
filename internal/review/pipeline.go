// Package review implements the staged code-review pipeline: analysis,
// issue extraction, and report synthesis, each backed by a single call
// to the text-generation client.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/review-agent/internal/core"
	"github.com/sevigo/review-agent/internal/llm"
)

// Pipeline runs the three review stages in order over a per-run state.
// It holds no mutable state of its own, so concurrent runs are
// independent.
type Pipeline struct {
	gen     llm.Generator
	prompts *llm.PromptManager
	logger  *slog.Logger
}

// stage couples a name used in logs with the function that executes it.
type stage struct {
	name string
	run  func(context.Context, *core.ReviewState) error
}

// promptData carries the fields the stage templates can reference.
type promptData struct {
	Code     string
	Analysis string
	Issues   string
}

// NewPipeline creates the review pipeline with its generator, prompt
// templates, and logger.
func NewPipeline(gen llm.Generator, prompts *llm.PromptManager, logger *slog.Logger) core.Reviewer {
	if gen == nil {
		panic("generator cannot be nil")
	}
	if prompts == nil {
		panic("prompt manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Pipeline{gen: gen, prompts: prompts, logger: logger}
}

// Review executes the stages strictly in order: analyze, find issues,
// report. Any transport failure aborts the run and no partial state is
// returned.
func (p *Pipeline) Review(ctx context.Context, code string) (*core.ReviewState, error) {
	state := &core.ReviewState{Code: code}

	stages := []stage{
		{name: "analyze", run: p.analyze},
		{name: "find_issues", run: p.findIssues},
		{name: "report", run: p.generateReport},
	}

	for _, st := range stages {
		start := time.Now()
		if err := st.run(ctx, state); err != nil {
			p.logger.Error("review stage failed", "stage", st.name, "error", err)
			return nil, fmt.Errorf("stage %s: %w", st.name, err)
		}
		p.logger.Debug("review stage completed",
			"stage", st.name,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}

	p.logger.Info("review completed", "issues", len(state.Issues))
	return state, nil
}

// analyze asks the model for a brief summary of purpose, structure, and
// concerns. The result is stored verbatim.
func (p *Pipeline) analyze(ctx context.Context, state *core.ReviewState) error {
	prompt, err := p.prompts.Render(llm.AnalysisPrompt, promptData{Code: state.Code})
	if err != nil {
		return err
	}

	res, err := p.gen.Generate(ctx, llm.GenerationRequest{Prompt: prompt})
	if err != nil {
		return err
	}

	state.Analysis = res.Text
	return nil
}

// findIssues asks for bullet-point issues and normalizes the answer. A
// bare "no issues" result gets exactly one more chance with a prompt
// that spells out the expected format; the retry's normalization wins
// either way.
func (p *Pipeline) findIssues(ctx context.Context, state *core.ReviewState) error {
	prompt, err := p.prompts.Render(llm.FindIssuesPrompt, promptData{Code: state.Code})
	if err != nil {
		return err
	}

	res, err := p.gen.Generate(ctx, llm.GenerationRequest{Prompt: prompt})
	if err != nil {
		return err
	}
	issues := NormalizeIssues(res.Text)

	if len(issues) == 1 && issues[0] == core.NoIssuesSentinel {
		p.logger.Info("extraction returned no issues, retrying once")

		retryPrompt, err := p.prompts.Render(llm.RetryIssuesPrompt, promptData{Code: state.Code})
		if err != nil {
			return err
		}
		retry, err := p.gen.Generate(ctx, llm.GenerationRequest{Prompt: retryPrompt})
		if err != nil {
			return err
		}
		issues = NormalizeIssues(retry.Text)
	}

	state.Issues = issues
	return nil
}

// generateReport combines the analysis and the issue list into the
// final report. The result is stored verbatim.
func (p *Pipeline) generateReport(ctx context.Context, state *core.ReviewState) error {
	prompt, err := p.prompts.Render(llm.ReportPrompt, promptData{
		Analysis: state.Analysis,
		Issues:   strings.Join(state.Issues, "\n"),
	})
	if err != nil {
		return err
	}

	res, err := p.gen.Generate(ctx, llm.GenerationRequest{Prompt: prompt})
	if err != nil {
		return err
	}

	state.Report = res.Text
	return nil
}
