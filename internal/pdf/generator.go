package pdf

import (
	"context"
	"fmt"
	"time"

	"htmlpdf/internal/config"
	"htmlpdf/internal/logging"
)

// Engine launches isolated rendering sessions. It is the narrow seam between
// the retry loop and the headless browser, so the loop can be tested against
// a lightweight double.
type Engine interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is one isolated load-and-export cycle. Load waits only until the
// DOM is parsed, not until all subresources finish. Close must be safe to
// call exactly once per session and tears down everything Launch created.
type Session interface {
	Load(ctx context.Context, html string) error
	ExportPDF(ctx context.Context, opts Options) ([]byte, error)
	Close() error
}

// RenderError is the single failure kind the generator exposes, raised only
// after all attempts are exhausted. It carries the last underlying cause.
type RenderError struct {
	Attempts int
	Cause    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("pdf generation failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// Generator drives the render retry loop: each attempt gets a fresh engine
// session which is always torn down before the next attempt or the return.
type Generator struct {
	engine        Engine
	maxAttempts   int
	settleDelay   time.Duration
	retryDelay    time.Duration
	exportTimeout time.Duration

	// sem bounds concurrent generations when configured; nil means
	// unbounded, where every request launches its own browser process.
	sem chan struct{}
}

// NewGenerator creates a Generator using the given engine and PDF settings.
func NewGenerator(engine Engine, cfg config.PDFConfig) *Generator {
	g := &Generator{
		engine:        engine,
		maxAttempts:   cfg.MaxAttempts,
		settleDelay:   time.Duration(cfg.SettleDelayMS) * time.Millisecond,
		retryDelay:    time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		exportTimeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}
	if g.maxAttempts <= 0 {
		g.maxAttempts = 2
	}
	if g.exportTimeout <= 0 {
		g.exportTimeout = 30 * time.Second
	}
	if cfg.MaxConcurrent > 0 {
		g.sem = make(chan struct{}, cfg.MaxConcurrent)
	}
	return g
}

// Generate renders htmlContent to PDF bytes, retrying with a fresh isolated
// session per attempt. The caller is responsible for rejecting empty input;
// the engine fails naturally on content it cannot load.
func (g *Generator) Generate(ctx context.Context, htmlContent string, opts Options) ([]byte, error) {
	if g.sem != nil {
		select {
		case g.sem <- struct{}{}:
			defer func() { <-g.sem }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	merged := opts.WithDefaults()

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		out, err := g.renderOnce(ctx, htmlContent, merged)
		if err == nil {
			return out, nil
		}
		lastErr = err
		logging.Warn("PDF render attempt failed",
			"attempt", attempt, "max_attempts", g.maxAttempts, "error", err.Error())

		if attempt < g.maxAttempts {
			if serr := sleepCtx(ctx, g.retryDelay); serr != nil {
				break
			}
		}
	}

	return nil, &RenderError{Attempts: g.maxAttempts, Cause: lastErr}
}

// renderOnce runs a single launch → load → settle → export cycle. The session
// is closed on every exit path; close errors are logged and never replace the
// attempt's result.
func (g *Generator) renderOnce(ctx context.Context, htmlContent string, opts Options) ([]byte, error) {
	sess, err := g.engine.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch render session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logging.Warn("Render session close failed", "error", cerr.Error())
		}
	}()

	if err := sess.Load(ctx, htmlContent); err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	// Settling delay: give fonts and async scripts a moment before capture.
	if err := sleepCtx(ctx, g.settleDelay); err != nil {
		return nil, err
	}

	exportCtx, cancel := context.WithTimeout(ctx, g.exportTimeout)
	defer cancel()

	buf, err := sess.ExportPDF(exportCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	return buf, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
