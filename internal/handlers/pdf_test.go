package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlpdf/internal/config"
	"htmlpdf/internal/pdf"
)

var stubPDF = []byte("%PDF-1.4\n%stub document\n")

type stubEngine struct {
	mu        sync.Mutex
	launches  int
	launchErr error
	exportErr error
}

func (e *stubEngine) Launch(ctx context.Context) (pdf.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launches++
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	return &stubSession{eng: e}, nil
}

func (e *stubEngine) launchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launches
}

type stubSession struct {
	eng *stubEngine
}

func (s *stubSession) Load(ctx context.Context, html string) error { return nil }

func (s *stubSession) ExportPDF(ctx context.Context, opts pdf.Options) ([]byte, error) {
	if s.eng.exportErr != nil {
		return nil, s.eng.exportErr
	}
	return stubPDF, nil
}

func (s *stubSession) Close() error { return nil }

func testCfg() config.Config {
	cfg := config.Defaults()
	cfg.PDF.SettleDelayMS = 1
	cfg.PDF.RetryDelayMS = 1
	cfg.Cache.PDFCacheEnabled = false
	return cfg
}

func newTestApp(cfg config.Config, eng *stubEngine, rdb *redis.Client) *fiber.App {
	gen := pdf.NewGenerator(eng, cfg.PDF)
	svc := NewPDFService(cfg, gen, rdb)

	app := fiber.New()
	app.Get("/", svc.HandleIndex)
	app.Post("/html-to-pdf", svc.HandleConversion)
	app.Get("/test-pdf", svc.HandleTestPDF)
	return app
}

func TestHandleIndex_ListsEndpoints(t *testing.T) {
	app := newTestApp(testCfg(), &stubEngine{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Service   string            `json:"service"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Endpoints, 3)
	assert.Contains(t, body.Endpoints, "POST /html-to-pdf")
	assert.Contains(t, body.Endpoints, "GET /test-pdf")
	assert.Contains(t, body.Endpoints, "GET /")
}

func TestHandleConversion_MissingHTMLNeverInvokesGenerator(t *testing.T) {
	eng := &stubEngine{}
	app := newTestApp(testCfg(), eng, nil)

	req := httptest.NewRequest("POST", "/html-to-pdf", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
	assert.Contains(t, body["usage"], "html")

	assert.Equal(t, 0, eng.launchCount(), "generator must not run for invalid input")
}

func TestHandleConversion_InvalidJSON(t *testing.T) {
	eng := &stubEngine{}
	app := newTestApp(testCfg(), eng, nil)

	req := httptest.NewRequest("POST", "/html-to-pdf", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, eng.launchCount())
}

func TestHandleConversion_Success(t *testing.T) {
	eng := &stubEngine{}
	app := newTestApp(testCfg(), eng, nil)

	req := httptest.NewRequest("POST", "/html-to-pdf",
		strings.NewReader(`{"html": "<h1>Hello</h1>", "options": {"format": "Letter"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="document.pdf"`, resp.Header.Get("Content-Disposition"))

	buf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(buf), "%PDF-"))
	assert.Equal(t, strconv.Itoa(len(buf)), resp.Header.Get("Content-Length"))
}

func TestHandleConversion_RenderFailure(t *testing.T) {
	eng := &stubEngine{launchErr: errors.New("chrome exploded")}
	app := newTestApp(testCfg(), eng, nil)

	req := httptest.NewRequest("POST", "/html-to-pdf", strings.NewReader(`{"html": "<h1>x</h1>"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "PDF generation failed", body["error"])
	assert.Contains(t, body["details"], "chrome exploded")

	assert.Equal(t, 2, eng.launchCount(), "default config retries once")
}

func TestHandleTestPDF(t *testing.T) {
	app := newTestApp(testCfg(), &stubEngine{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/test-pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	buf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(buf), "%PDF-"))
}

func TestConversion_CacheHitSkipsGenerator(t *testing.T) {
	mrs, err := miniredis.Run()
	require.NoError(t, err)
	defer mrs.Close()

	cfg := testCfg()
	cfg.Cache.PDFCacheEnabled = true
	cfg.Cache.PDFCacheTTLSecs = 60

	eng := &stubEngine{}
	rdb := redis.NewClient(&redis.Options{Addr: mrs.Addr()})
	app := newTestApp(cfg, eng, rdb)

	post := func() []byte {
		req := httptest.NewRequest("POST", "/html-to-pdf", strings.NewReader(`{"html": "<h1>cached</h1>"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		buf, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return buf
	}

	first := post()
	assert.Equal(t, 1, eng.launchCount())

	second := post()
	assert.Equal(t, 1, eng.launchCount(), "second request must be served from cache")
	assert.Equal(t, first, second)
}

func TestSampleHTML_ContainsTimestamp(t *testing.T) {
	stamp := time.Date(2026, time.March, 2, 15, 4, 5, 0, time.UTC)
	page := sampleHTML(stamp)
	assert.Contains(t, page, stamp.Format(time.RFC1123))
	assert.Contains(t, page, "<html>")
}
