package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"htmlpdf/internal/logging"
	"htmlpdf/internal/pdf"
)

// The Redis cache is a best-effort TTL cache of rendered PDFs. Read and
// write failures are logged and otherwise ignored so a degraded Redis can
// never break rendering.

func (svc *PDFService) cacheEnabled() bool {
	return svc.Redis != nil && svc.Config.Cache.PDFCacheEnabled
}

// computeCacheKey derives a stable key from the HTML input and the render
// options.
func computeCacheKey(html string, opts pdf.Options) string {
	h := sha256.New()
	h.Write([]byte(html))
	if optsJSON, err := json.Marshal(opts); err == nil {
		h.Write(optsJSON)
	}
	return "pdfcache:" + hex.EncodeToString(h.Sum(nil))
}

func (svc *PDFService) getCachedPDF(key string) []byte {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cached, err := svc.Redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil
	}
	return cached
}

func (svc *PDFService) setCachedPDF(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ttl := time.Duration(svc.Config.Cache.PDFCacheTTLSecs) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := svc.Redis.Set(ctx, key, data, ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err)
	}
}
