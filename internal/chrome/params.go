package chrome

import (
	"fmt"

	"github.com/chromedp/cdproto/page"

	"htmlpdf/internal/pdf"
)

// buildPrintToPDFParams translates merged render options into Chromium's
// printToPDF parameters. Validation happens here, at the engine boundary:
// unknown formats, malformed dimensions and out-of-range scales are rejected
// before any protocol call is made.
func buildPrintToPDFParams(opts pdf.Options) (*page.PrintToPDFParams, error) {
	params := page.PrintToPDF()

	scale := opts.Scale
	if scale == 0 {
		scale = 1.0
	}
	if scale < 0.1 || scale > 2.0 {
		return nil, fmt.Errorf("scale must be between 0.1 and 2.0, got %v", scale)
	}
	params = params.WithScale(scale)

	size := pdf.PaperSizes["A4"]
	if opts.Format != "" {
		var err error
		size, err = pdf.PaperSizeFor(opts.Format)
		if err != nil {
			return nil, err
		}
	}
	if opts.Width != "" {
		w, err := pdf.ParseLength(opts.Width)
		if err != nil {
			return nil, fmt.Errorf("width: %w", err)
		}
		size.Width = w
	}
	if opts.Height != "" {
		h, err := pdf.ParseLength(opts.Height)
		if err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
		size.Height = h
	}
	params = params.WithPaperWidth(size.Width).WithPaperHeight(size.Height)

	if opts.PrintBackground != nil {
		params = params.WithPrintBackground(*opts.PrintBackground)
	}
	if opts.Landscape != nil {
		params = params.WithLandscape(*opts.Landscape)
	}

	if opts.Margin.Top != "" {
		v, err := pdf.ParseLength(opts.Margin.Top)
		if err != nil {
			return nil, fmt.Errorf("margin top: %w", err)
		}
		params = params.WithMarginTop(v)
	}
	if opts.Margin.Right != "" {
		v, err := pdf.ParseLength(opts.Margin.Right)
		if err != nil {
			return nil, fmt.Errorf("margin right: %w", err)
		}
		params = params.WithMarginRight(v)
	}
	if opts.Margin.Bottom != "" {
		v, err := pdf.ParseLength(opts.Margin.Bottom)
		if err != nil {
			return nil, fmt.Errorf("margin bottom: %w", err)
		}
		params = params.WithMarginBottom(v)
	}
	if opts.Margin.Left != "" {
		v, err := pdf.ParseLength(opts.Margin.Left)
		if err != nil {
			return nil, fmt.Errorf("margin left: %w", err)
		}
		params = params.WithMarginLeft(v)
	}

	if opts.DisplayHeaderFooter != nil {
		params = params.WithDisplayHeaderFooter(*opts.DisplayHeaderFooter)
	}
	if opts.HeaderTemplate != "" {
		params = params.WithHeaderTemplate(opts.HeaderTemplate)
	}
	if opts.FooterTemplate != "" {
		params = params.WithFooterTemplate(opts.FooterTemplate)
	}
	if opts.PageRanges != "" {
		params = params.WithPageRanges(opts.PageRanges)
	}

	return params, nil
}
