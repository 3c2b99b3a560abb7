package workflow

import (
	"context"
	"fmt"

	"github.com/mocksi/webforge/activity"
	"github.com/mocksi/webforge/analysis"
	"github.com/mocksi/webforge/codegen"
	"github.com/mocksi/webforge/page"
	"github.com/mocksi/webforge/pipeline"
	"github.com/mocksi/webforge/techspec"
)

// ReverseOutput is the reverse pipeline result.
type ReverseOutput struct {
	activity.ReverseResult
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// ScreenshotOutput is the screenshot pipeline result.
type ScreenshotOutput struct {
	activity.ScreenshotResult
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// AnalyzeOutput merges the extraction and analysis step results.
type AnalyzeOutput struct {
	URL                   string           `json:"url"`
	Content               *page.Content    `json:"content"`
	Analysis              *analysis.Result `json:"analysis"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
}

// TechSpecOutput is the technical-specification pipeline result.
type TechSpecOutput struct {
	URL                   string         `json:"url"`
	Spec                  *techspec.Spec `json:"spec"`
	Complexity            string         `json:"complexity"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds"`
}

// WebsiteOutput aggregates all four website-generation step results plus
// the summed total processing time.
type WebsiteOutput struct {
	URL                        string           `json:"url"`
	Screenshot                 ScreenshotOutput `json:"screenshot"`
	Content                    *page.Content    `json:"content"`
	Spec                       *techspec.Spec   `json:"spec"`
	Frontend                   *codegen.Bundle  `json:"frontend"`
	TotalProcessingTimeSeconds float64          `json:"total_processing_time_seconds"`
}

func (p *Pipelines) runReverse(ctx context.Context, taskID, input string) Outcome {
	env, err := pipeline.RunStep(ctx, p.logger, "reverse-text", reversePolicy, reverseTimeout,
		func(ctx context.Context) (pipeline.Envelope[activity.ReverseResult], error) {
			return p.activities.Reverse(ctx, input)
		})
	if err != nil {
		return p.fail(input, err)
	}

	// Best-effort: a logging failure never fails the pipeline.
	if _, err := pipeline.RunStep(ctx, p.logger, "log-processing", logPolicy, logTimeout,
		func(ctx context.Context) (pipeline.Envelope[struct{}], error) {
			message := fmt.Sprintf("Reversed %d characters", env.Payload.OriginalLength)
			return p.activities.Log(ctx, message, taskID)
		}); err != nil {
		p.logger.Warn("Log step failed", "task_id", taskID, "error", err)
	}

	return p.complete(input, ReverseOutput{
		ReverseResult:         env.Payload,
		ProcessingTimeSeconds: env.ProcessingTimeSeconds,
	})
}

func (p *Pipelines) runScreenshot(ctx context.Context, input string) Outcome {
	env, err := pipeline.RunStep(ctx, p.logger, "capture-screenshot", browserPolicy, browserTimeout,
		func(ctx context.Context) (pipeline.Envelope[activity.ScreenshotResult], error) {
			return p.activities.CaptureScreenshot(ctx, input)
		})
	if err != nil {
		return p.fail(input, err)
	}

	return p.complete(input, ScreenshotOutput{
		ScreenshotResult:      env.Payload,
		ProcessingTimeSeconds: env.ProcessingTimeSeconds,
	})
}

func (p *Pipelines) runAnalyze(ctx context.Context, input string) Outcome {
	extracted, err := pipeline.RunStep(ctx, p.logger, "extract-content", browserPolicy, browserTimeout,
		func(ctx context.Context) (pipeline.Envelope[*page.Content], error) {
			return p.activities.ExtractContent(ctx, input)
		})
	if err != nil {
		return p.fail(input, err)
	}

	analyzed, err := pipeline.RunStep(ctx, p.logger, "analyze-with-ai", aiPolicy, aiTimeout,
		func(ctx context.Context) (pipeline.Envelope[*analysis.Result], error) {
			return p.activities.Analyze(ctx, extracted.Payload)
		})
	if err != nil {
		return p.fail(input, err)
	}

	return p.complete(input, AnalyzeOutput{
		URL:                   extracted.Payload.URL,
		Content:               extracted.Payload,
		Analysis:              analyzed.Payload,
		ProcessingTimeSeconds: extracted.ProcessingTimeSeconds + analyzed.ProcessingTimeSeconds,
	})
}

func (p *Pipelines) runTechSpec(ctx context.Context, input string) Outcome {
	env, err := pipeline.RunStep(ctx, p.logger, "generate-tech-spec", techSpecPolicy, techSpecTimeout,
		func(ctx context.Context) (pipeline.Envelope[*techspec.Spec], error) {
			return p.activities.GenerateTechSpec(ctx, input)
		})
	if err != nil {
		return p.fail(input, err)
	}

	return p.complete(input, TechSpecOutput{
		URL:                   env.Payload.Meta.URL,
		Spec:                  env.Payload,
		Complexity:            env.Payload.Complexity.Level,
		ProcessingTimeSeconds: env.ProcessingTimeSeconds,
	})
}

// runWebsite sequences all four steps. Failure of any step aborts the
// remaining steps.
func (p *Pipelines) runWebsite(ctx context.Context, input string) Outcome {
	shot, err := pipeline.RunStep(ctx, p.logger, "capture-screenshot", browserPolicy, browserTimeout,
		func(ctx context.Context) (pipeline.Envelope[activity.ScreenshotResult], error) {
			return p.activities.CaptureScreenshot(ctx, input)
		})
	if err != nil {
		return p.fail(input, err)
	}

	extracted, err := pipeline.RunStep(ctx, p.logger, "extract-content", browserPolicy, browserTimeout,
		func(ctx context.Context) (pipeline.Envelope[*page.Content], error) {
			return p.activities.ExtractContent(ctx, input)
		})
	if err != nil {
		return p.fail(input, err)
	}

	spec, err := pipeline.RunStep(ctx, p.logger, "generate-tech-spec", techSpecPolicy, techSpecTimeout,
		func(ctx context.Context) (pipeline.Envelope[*techspec.Spec], error) {
			return p.activities.GenerateTechSpec(ctx, input)
		})
	if err != nil {
		return p.fail(input, err)
	}

	frontend, err := pipeline.RunStep(ctx, p.logger, "generate-frontend-code", frontendPolicy, frontendTimeout,
		func(ctx context.Context) (pipeline.Envelope[*codegen.Bundle], error) {
			return p.activities.GenerateFrontend(ctx, extracted.Payload, spec.Payload)
		})
	if err != nil {
		return p.fail(input, err)
	}

	total := shot.ProcessingTimeSeconds + extracted.ProcessingTimeSeconds +
		spec.ProcessingTimeSeconds + frontend.ProcessingTimeSeconds

	return p.complete(input, WebsiteOutput{
		URL: shot.Payload.URL,
		Screenshot: ScreenshotOutput{
			ScreenshotResult:      shot.Payload,
			ProcessingTimeSeconds: shot.ProcessingTimeSeconds,
		},
		Content:                    extracted.Payload,
		Spec:                       spec.Payload,
		Frontend:                   frontend.Payload,
		TotalProcessingTimeSeconds: total,
	})
}
