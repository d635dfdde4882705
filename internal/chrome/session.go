package chrome

import (
	"context"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"htmlpdf/internal/pdf"
)

// session is one browser process plus one tab, used for a single
// load-and-export cycle.
type session struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	profileDir  string
	closed      bool
}

// run executes chromedp actions against the session tab while honoring the
// caller's context for cancellation and deadlines.
func (s *session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return err
	}
	return nil
}

// Load injects the HTML into the tab and waits until the DOM is parsed. It
// deliberately does not wait for subresources, so a hanging image fetch
// cannot stall the render.
func (s *session) Load(ctx context.Context, html string) error {
	return s.run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// ExportPDF prints the current tab content to PDF with the merged options.
func (s *session) ExportPDF(ctx context.Context, opts pdf.Options) ([]byte, error) {
	params, err := buildPrintToPDFParams(opts)
	if err != nil {
		return nil, err
	}

	var buf []byte
	err = s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Close tears down the tab, the browser process and the temp profile dir.
// Safe to call more than once.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// chromedp.Cancel waits for the browser to exit gracefully, so the
	// profile dir is no longer in use when we remove it.
	var err error
	if chromedp.FromContext(s.tabCtx) != nil {
		err = chromedp.Cancel(s.tabCtx)
	}
	s.tabCancel()
	s.allocCancel()

	if s.profileDir != "" {
		if rerr := os.RemoveAll(s.profileDir); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
