package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"tracker/internal/adapters/http/middleware"
	"tracker/internal/adapters/http/perf"
	"tracker/internal/application/orchestrators"
)

// App holds what the handlers need.
type App struct {
	Tracker   *orchestrators.Tracker
	Collector *perf.Collector
	Metrics   *perf.Metrics

	limiter *middleware.RateLimiter
}

// Close stops the background work NewMux started for a.
func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
}

// loadCSRFKey reads the CSRF secret from TRACKER_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("TRACKER_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("TRACKER_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("TRACKER_ENV") == "production" {
		log.Fatal("TRACKER_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (open pages stop working after a restart). Set TRACKER_CSRF_KEY to keep it stable.")
	return key
}

// Global app instance (set by NewMux)
var app *App

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 30

// TrustedOrigins are accepted by the CSRF check in addition to the page's own origin.
var TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}

// NewMux wires HTTP handlers for the app. Call a.Close when the server is done.
func NewMux(staticDir string, a *App) http.Handler {
	app = a
	middleware.SecureCookies = os.Getenv("TRACKER_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	a.limiter = middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> SecurityHeaders -> RateLimit -> CSRF -> Mux
	// Headers are set before RateLimit and CSRF so their 429 and 403 carry them too.
	return middleware.Chain(mux,
		middleware.CSRF(csrfKey, TrustedOrigins...),
		middleware.RateLimit(a.limiter),
		middleware.SecurityHeaders,
		middleware.Timing(a.Collector, middleware.SlowRequestThreshold()),
	)
}
