package chrome

import (
	"context"
	"fmt"
	"os"

	"github.com/chromedp/chromedp"

	"htmlpdf/internal/config"
	"htmlpdf/internal/logging"
	"htmlpdf/internal/pdf"
)

// Engine implements pdf.Engine on top of headless Chrome via chromedp. Every
// Launch starts a fresh browser process with its own temp profile dir, so
// sessions are fully isolated from each other and from previous attempts.
type Engine struct {
	cfg config.PDFConfig
}

// NewEngine creates a chromedp-backed engine from the PDF configuration.
func NewEngine(cfg config.PDFConfig) *Engine {
	if cfg.ChromePath != "" {
		logging.Info("Using configured browser binary", "path", cfg.ChromePath)
	} else if cfg.ChromeSkipDownload {
		logging.Info("Managed browser download disabled, relying on system binary")
	}
	return &Engine{cfg: cfg}
}

// Launch starts an isolated browser process and returns a session bound to a
// single tab. The caller owns the session and must Close it.
func (e *Engine) Launch(ctx context.Context) (pdf.Session, error) {
	profileDir, err := os.MkdirTemp("", "chromedata-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp profile dir: %w", err)
	}

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		// Force software rendering and avoid Vulkan/ANGLE issues in minimal
		// container environments.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.cfg.ChromePath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(e.cfg.ChromePath))
	}
	if e.cfg.ChromeNoSandbox {
		allocatorOptions = append(allocatorOptions, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &session{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		profileDir:  profileDir,
	}

	// Start the browser eagerly so launch failures surface here rather than
	// on the first action.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}
