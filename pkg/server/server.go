// Package server serves a classified document as an HTML page.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/loglens/internal/logging"
	"github.com/ccollicutt/loglens/pkg/metrics"
	"github.com/ccollicutt/loglens/pkg/output"
	"github.com/ccollicutt/loglens/pkg/source"
)

const shutdownTimeout = 5 * time.Second

// Loader produces the document to serve.
type Loader func(ctx context.Context) (*source.Document, error)

// Options configures a Server.
type Options struct {
	Title   string
	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
}

// Server holds the current document and serves it over HTTP.
type Server struct {
	load      Loader
	formatter output.Formatter
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
	log       *logrus.Entry

	mu      sync.RWMutex
	doc     *source.Document
	loadErr error
}

// New creates a Server. Call Reload before serving to load the first
// document.
func New(load Loader, opts Options) *Server {
	return &Server{
		load:      load,
		formatter: output.NewHTMLFormatter(output.FormatOptions{Title: opts.Title}),
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		log:       logging.For(opts.Logger, logging.ComponentServer),
	}
}

// Reload loads the document again. On failure the previous document keeps
// being served and the error is reported by /healthz.
func (s *Server) Reload(ctx context.Context) error {
	doc, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Document returns the document currently served.
func (s *Server) Document() *source.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Server) state() (*source.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.loadErr
}

// Handler returns the HTTP routes: "/" for the page, "/healthz" and
// "/metrics".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s.withRequestLogging(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc, err := s.state()
	if doc == nil {
		msg := "no document loaded"
		if err != nil {
			msg = fmt.Sprintf("loading document: %v", err)
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}

	report := output.NewReport([]*source.Document{doc}, output.Metadata{GeneratedAt: doc.LoadedAt})

	var buf bytes.Buffer
	if err := s.formatter.Format(r.Context(), report, &buf); err != nil {
		requestLog(r).WithError(err).Error("rendering page")
		http.Error(w, "rendering page failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	doc, err := s.state()
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	if doc == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "no document loaded")
		return
	}
	fmt.Fprintf(w, "ok: %s\n", doc.Status)
}

type requestLogKey struct{}

func requestLog(r *http.Request) *logrus.Entry {
	if entry, ok := r.Context().Value(requestLogKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logging.For(nil, logging.ComponentServer)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		entry := s.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		r = r.WithContext(context.WithValue(r.Context(), requestLogKey{}, entry))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.metrics.HTTPRequest(routeLabel(r.URL.Path), rec.status)
		entry.WithFields(logrus.Fields{
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request served")
	})
}

// routeLabel keeps the metrics path label to the known routes.
func routeLabel(path string) string {
	switch path {
	case "/", "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.WithField("addr", addr).Info("serving")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-errCh
		return nil
	}
}
