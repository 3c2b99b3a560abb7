package activity

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/mocksi/webforge/analysis"
	"github.com/mocksi/webforge/codegen"
	"github.com/mocksi/webforge/page"
	"github.com/mocksi/webforge/pipeline"
	"github.com/mocksi/webforge/techspec"
)

// ScreenshotResult is the screenshot-capture payload.
type ScreenshotResult struct {
	URL           string `json:"url"`
	PageTitle     string `json:"page_title"`
	ScreenshotB64 string `json:"screenshot_bytes_b64"`
	SessionID     string `json:"session_id"`
	ReplayURL     string `json:"replay_url"`
}

// CaptureScreenshot opens a fresh session, navigates, captures a
// full-page screenshot and returns it base64-encoded along with the
// session replay URL. The session is closed on every exit path.
func (a *Activities) CaptureScreenshot(ctx context.Context, rawURL string) (pipeline.Envelope[ScreenshotResult], error) {
	start := time.Now()

	session, pageURL, err := a.openPage(ctx, rawURL)
	if err != nil {
		return pipeline.Envelope[ScreenshotResult]{}, err
	}
	defer a.closeSession(session)

	title, err := session.Title(ctx)
	if err != nil {
		return pipeline.Envelope[ScreenshotResult]{}, err
	}

	shot, err := session.Screenshot(ctx)
	if err != nil {
		return pipeline.Envelope[ScreenshotResult]{}, err
	}

	return pipeline.NewEnvelope(ScreenshotResult{
		URL:           pageURL,
		PageTitle:     title,
		ScreenshotB64: base64.StdEncoding.EncodeToString(shot),
		SessionID:     session.ID,
		ReplayURL:     session.ReplayURL(),
	}, start), nil
}

// ExtractContent opens a fresh session, waits for dynamic content to
// settle, and harvests the rendered page into structured content.
func (a *Activities) ExtractContent(ctx context.Context, rawURL string) (pipeline.Envelope[*page.Content], error) {
	start := time.Now()

	session, pageURL, err := a.openPage(ctx, rawURL)
	if err != nil {
		return pipeline.Envelope[*page.Content]{}, err
	}
	defer a.closeSession(session)

	if err := a.settle(ctx); err != nil {
		return pipeline.Envelope[*page.Content]{}, err
	}

	html, err := session.Content(ctx)
	if err != nil {
		return pipeline.Envelope[*page.Content]{}, err
	}

	content, err := a.extractor.Extract(html, pageURL)
	if err != nil {
		return pipeline.Envelope[*page.Content]{}, pipeline.Transient(err)
	}

	return pipeline.NewEnvelope(content, start), nil
}

// GenerateTechSpec opens a fresh session and captures the technical
// specification of the rendered page, including the derived complexity
// rating and requirement documents.
func (a *Activities) GenerateTechSpec(ctx context.Context, rawURL string) (pipeline.Envelope[*techspec.Spec], error) {
	start := time.Now()

	session, pageURL, err := a.openPage(ctx, rawURL)
	if err != nil {
		return pipeline.Envelope[*techspec.Spec]{}, err
	}
	defer a.closeSession(session)

	if err := a.settle(ctx); err != nil {
		return pipeline.Envelope[*techspec.Spec]{}, err
	}

	html, err := session.Content(ctx)
	if err != nil {
		return pipeline.Envelope[*techspec.Spec]{}, err
	}

	spec, err := techspec.Capture(html, pageURL)
	if err != nil {
		return pipeline.Envelope[*techspec.Spec]{}, pipeline.Transient(err)
	}

	return pipeline.NewEnvelope(spec, start), nil
}

// Analyze runs the AI-analysis cascade over extracted content. The
// cascade never fails; this operation only errors on cancellation.
func (a *Activities) Analyze(ctx context.Context, content *page.Content) (pipeline.Envelope[*analysis.Result], error) {
	start := time.Now()

	if content == nil {
		return pipeline.Envelope[*analysis.Result]{}, pipeline.Validationf("extracted content is required")
	}
	if err := ctx.Err(); err != nil {
		return pipeline.Envelope[*analysis.Result]{}, pipeline.Transient(err)
	}

	return pipeline.NewEnvelope(a.analyzer.Analyze(ctx, content), start), nil
}

// GenerateFrontend renders the starter-site bundle from extracted
// content and the captured technical specification.
func (a *Activities) GenerateFrontend(ctx context.Context, content *page.Content, spec *techspec.Spec) (pipeline.Envelope[*codegen.Bundle], error) {
	start := time.Now()

	if content == nil {
		return pipeline.Envelope[*codegen.Bundle]{}, pipeline.Validationf("extracted content is required")
	}
	if err := ctx.Err(); err != nil {
		return pipeline.Envelope[*codegen.Bundle]{}, pipeline.Transient(err)
	}

	return pipeline.NewEnvelope(codegen.Generate(content, spec), start), nil
}
