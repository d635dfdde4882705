package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"htmlpdf/internal/config"
	"htmlpdf/internal/logging"
	"htmlpdf/internal/pdf"
)

const conversionUsage = `POST /html-to-pdf with a JSON body: {"html": "<h1>Hello</h1>", "options": {"format": "A4", "landscape": false}}`

// ConvertRequest is the JSON body of POST /html-to-pdf.
type ConvertRequest struct {
	HTML    string      `json:"html"`
	Options pdf.Options `json:"options"`
}

// PDFService bundles configuration and dependencies for the PDF endpoints.
type PDFService struct {
	Config *config.Config
	Redis  *redis.Client
	Gen    *pdf.Generator
}

// NewPDFService creates a new PDFService instance.
func NewPDFService(cfg config.Config, gen *pdf.Generator, rdb *redis.Client) *PDFService {
	return &PDFService{
		Config: &cfg,
		Redis:  rdb,
		Gen:    gen,
	}
}

// HandleIndex describes the available endpoints. A 200 here is also the
// health contract for orchestrating supervisors.
func (svc *PDFService) HandleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "htmlpdf",
		"endpoints": fiber.Map{
			"GET /":             "service info",
			"POST /html-to-pdf": "render the html field of a JSON body to PDF",
			"GET /test-pdf":     "render a built-in sample page to PDF",
		},
	})
}

// HandleConversion renders the submitted HTML to PDF.
func (svc *PDFService) HandleConversion(c *fiber.Ctx) error {
	var req ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestWithUsage(c, "Request body must be valid JSON")
	}
	if strings.TrimSpace(req.HTML) == "" {
		return badRequestWithUsage(c, "Missing required field: html")
	}
	return svc.respondWithPDF(c, req.HTML, req.Options, "document.pdf")
}

// HandleTestPDF renders a built-in sample page, stamped with the current
// server time. Useful as a smoke test for the whole render path.
func (svc *PDFService) HandleTestPDF(c *fiber.Ctx) error {
	return svc.respondWithPDF(c, sampleHTML(time.Now()), pdf.Options{}, "test.pdf")
}

// respondWithPDF runs the generation pipeline (cache lookup, render, cache
// store) and writes the binary response. Generation runs detached from the
// request context: a client that disconnects early does not abort the
// in-progress render.
func (svc *PDFService) respondWithPDF(c *fiber.Ctx, html string, opts pdf.Options, filename string) error {
	cacheKey := computeCacheKey(html, opts)

	if svc.cacheEnabled() {
		if cached := svc.getCachedPDF(cacheKey); cached != nil {
			logging.Info("PDF cache hit", "key", cacheKey)
			return sendPDF(c, cached, filename)
		}
	}

	pdfBuf, err := svc.Gen.Generate(context.Background(), html, opts)
	if err != nil {
		var renderErr *pdf.RenderError
		if errors.As(err, &renderErr) {
			logging.Error("PDF generation failed",
				"attempts", renderErr.Attempts, "error", renderErr.Cause.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "PDF generation failed",
				"details": renderErr.Cause.Error(),
			})
		}
		logging.Error("PDF generation failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "PDF generation failed",
			"details": err.Error(),
		})
	}

	if svc.cacheEnabled() {
		svc.setCachedPDF(cacheKey, pdfBuf)
	}

	logging.Info("PDF generated",
		"filename", filename, "bytes", len(pdfBuf), "request_id", c.Get("X-Request-ID"))

	return sendPDF(c, pdfBuf, filename)
}

func sendPDF(c *fiber.Ctx, buf []byte, filename string) error {
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Set("Content-Length", strconv.Itoa(len(buf)))
	return c.Send(buf)
}

func badRequestWithUsage(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"usage": conversionUsage,
	})
}
