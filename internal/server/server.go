package server

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/models"
	"github.com/digimosa/doc-redact/internal/storage"
	"github.com/digimosa/doc-redact/internal/whitelist"
)

const (
	apiName    = "Financial Document Redaction API"
	apiVersion = "1.0.0"
)

// Processor handles one uploaded document.
type Processor interface {
	ProcessUpload(ctx context.Context, name string, data []byte) (*models.DetectionResult, error)
}

// RunStore reads back recorded runs.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]storage.RunModel, error)
	GetRun(ctx context.Context, id uint) (*storage.RunModel, error)
}

type Server struct {
	processor Processor
	runs      RunStore
	whitelist *whitelist.Whitelist
	maxBytes  int64
	threshold float64
	started   time.Time
	log       *logrus.Entry
}

type Options struct {
	Processor Processor
	Runs      RunStore
	Whitelist *whitelist.Whitelist
	MaxBytes  int64
	Threshold float64
}

func NewServer(opts Options) *Server {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = models.MaxUploadBytes
	}
	return &Server{
		processor: opts.Processor,
		runs:      opts.Runs,
		whitelist: opts.Whitelist,
		maxBytes:  maxBytes,
		threshold: opts.Threshold,
		started:   time.Now(),
		log:       logging.Component("server"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /redact/", s.handleRedact)
	mux.HandleFunc("GET /download/{id}", s.handleDownload)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /runs/{id}/{report}", s.handleReport)
	mux.HandleFunc("POST /whitelist", s.handleWhitelist)
	return s.recoverer(s.logRequests(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("starting detection service")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down detection service")
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.log.WithFields(logrus.Fields{"path": r.URL.Path, "panic": v}).Error("handler panicked")
				writeDetail(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
