package pdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PaperSize holds paper dimensions in inches.
type PaperSize struct {
	Width  float64
	Height float64
}

// PaperSizes maps the supported named formats to their dimensions. Keys are
// uppercase; lookups go through PaperSizeFor which is case-insensitive.
var PaperSizes = map[string]PaperSize{
	"A0":      {Width: 33.1, Height: 46.8},
	"A1":      {Width: 23.4, Height: 33.1},
	"A2":      {Width: 16.54, Height: 23.4},
	"A3":      {Width: 11.7, Height: 16.54},
	"A4":      {Width: 8.27, Height: 11.7},
	"LETTER":  {Width: 8.5, Height: 11},
	"LEGAL":   {Width: 8.5, Height: 14},
	"TABLOID": {Width: 11, Height: 17},
	"LEDGER":  {Width: 17, Height: 11},
}

// Margin holds per-side margins as dimension strings ("1cm", "0.5in", ...).
type Margin struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// Options mirrors Chromium's printToPDF parameters. All fields are optional;
// unset fields fall back to the documented defaults (A4, printBackground,
// 1cm margins). Explicit width/height take precedence over format.
type Options struct {
	Format              string  `json:"format,omitempty"`
	Width               string  `json:"width,omitempty"`
	Height              string  `json:"height,omitempty"`
	Margin              Margin  `json:"margin,omitempty"`
	DisplayHeaderFooter *bool   `json:"displayHeaderFooter,omitempty"`
	HeaderTemplate      string  `json:"headerTemplate,omitempty"`
	FooterTemplate      string  `json:"footerTemplate,omitempty"`
	PrintBackground     *bool   `json:"printBackground,omitempty"`
	Landscape           *bool   `json:"landscape,omitempty"`
	PageRanges          string  `json:"pageRanges,omitempty"`
	Scale               float64 `json:"scale,omitempty"`
}

const (
	defaultFormat = "A4"
	defaultMargin = "1cm"
	defaultScale  = 1.0
)

// WithDefaults returns a copy of the options with the documented defaults
// merged in. It does not validate individual fields; dimension strings and
// scale are checked when the engine builds its export parameters.
func (o Options) WithDefaults() Options {
	merged := o
	if merged.Format == "" && merged.Width == "" && merged.Height == "" {
		merged.Format = defaultFormat
	}
	if merged.PrintBackground == nil {
		t := true
		merged.PrintBackground = &t
	}
	if merged.Margin.Top == "" {
		merged.Margin.Top = defaultMargin
	}
	if merged.Margin.Right == "" {
		merged.Margin.Right = defaultMargin
	}
	if merged.Margin.Bottom == "" {
		merged.Margin.Bottom = defaultMargin
	}
	if merged.Margin.Left == "" {
		merged.Margin.Left = defaultMargin
	}
	if merged.Scale == 0 {
		merged.Scale = defaultScale
	}
	return merged
}

// PaperSizeFor resolves a named format, case-insensitively.
func PaperSizeFor(format string) (PaperSize, error) {
	size, ok := PaperSizes[strings.ToUpper(strings.TrimSpace(format))]
	if !ok {
		return PaperSize{}, fmt.Errorf("unsupported paper format: %s", format)
	}
	return size, nil
}

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

// ParseLength converts a dimension string to inches. A bare number is taken
// as inches; recognized units are in, cm, mm, pt and px.
func ParseLength(value string) (float64, error) {
	matches := lengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid dimension: %q", value)
	}

	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid dimension: %q", value)
	}

	switch strings.ToLower(matches[2]) {
	case "", "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	case "px":
		return amount / 96.0, nil
	default:
		return 0, fmt.Errorf("unsupported dimension unit: %q", matches[2])
	}
}
