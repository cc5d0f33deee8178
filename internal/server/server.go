// Package server exposes the search service over HTTP: ingestion
// endpoints, the fused search endpoint and health/banner routes.
package server

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hyperserp/internal/bootstrap"
	"hyperserp/internal/builder"
	"hyperserp/internal/config"
	"hyperserp/internal/fetch"
	"hyperserp/internal/index"
	"hyperserp/internal/llm"
	"hyperserp/internal/log"
	"hyperserp/internal/search"
	"hyperserp/internal/store"
	"hyperserp/internal/websearch"
)

type API struct {
	bld  *builder.Builder
	pipe *search.Pipeline
	ftr  fetch.Fetcher
	lg   *log.Logger
}

func NewAPI(bld *builder.Builder, pipe *search.Pipeline, ftr fetch.Fetcher, lg *log.Logger) *API {
	return &API{bld: bld, pipe: pipe, ftr: ftr, lg: lg}
}

func (a *API) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", a.handleRoot)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ingest", a.handleIngest)
	mux.HandleFunc("/scrape_and_ingest", a.handleScrapeAndIngest)
	mux.HandleFunc("/search", a.handleSearch)
	return mux
}

// Handler returns the full middleware-wrapped handler.
func (a *API) Handler() http.Handler {
	return logMiddleware(a.lg, a.mux())
}

// Run builds the service from the environment and serves until SIGINT or
// SIGTERM, then drains in-flight requests for up to 5 seconds.
func Run(addr string) error {
	lg := log.New()

	idx, err := index.Open(config.IndexPath())
	if err != nil {
		// Corrupt snapshots start an empty index; losing the warm corpus is
		// preferable to refusing to serve.
		lg.Warn("index.snapshot_unreadable", "path", config.IndexPath(), "err", err.Error())
	}
	meta, err := store.Open(config.MetaDBPath())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer meta.Close()

	bld := builder.New(idx, meta, lg)
	ftr := fetch.New()
	gen := llm.NewFromEnv()
	cascade := websearch.NewCascade(lg,
		websearch.NewDuckDuckGo(),
		websearch.NewBrave(),
		websearch.NewStartpage(),
		websearch.NewWikipedia(gen),
		websearch.NewGitHub(),
	)
	pipe := search.NewPipeline(cascade, bld, ftr, gen, lg)
	api := NewAPI(bld, pipe, ftr, lg)

	if bootstrap.Enabled() {
		go bootstrap.Run(context.Background(), bld, ftr, lg, bootstrap.MaxPages())
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	lg.Info("server.start", "addr", addr, "indexed_docs", bld.IndexedDocs())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigc:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		lg.Info("server.stop", "signal", sig.String())
		return nil
	case err := <-errs:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	nbytes int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.nbytes += n
	return n, err
}

// newRequestID returns a short, unique request identifier.
func newRequestID() string {
	var b [12]byte
	if _, err := crand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 24)
	for i, v := range b {
		out[i*2] = hexdigits[v>>4]
		out[i*2+1] = hexdigits[v&0x0f]
	}
	return string(out)
}

// clientIP extracts the best-effort client IP from headers or RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return rip
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		return host[:i]
	}
	return host
}

func logMiddleware(lg *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// request-id propagation: accept client-provided or generate
		reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = newRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		lg.Info("http.req",
			"req_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"remoteIP", clientIP(r),
			"status", rec.status,
			"duration_ms", int(time.Since(start)/time.Millisecond),
			"bytes", rec.nbytes,
		)
	})
}
