package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krobus00/symbol-store/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultReadHeaderTimeout = 2 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second

	requestIDHeader = "X-Request-Id"
)

// HTTPServer serves the read api. Every request gets a request id, a recovered
// panic becomes a 500 and one access log line is written per request.
type HTTPServer struct {
	server *http.Server
	logger *logrus.Logger
}

func NewHTTPServer(cfg config.HTTPConfig, logger *logrus.Logger, handler http.Handler) *HTTPServer {
	if handler == nil {
		handler = NewHTTPMux()
	}

	addr := strings.TrimSpace(cfg.Addr)
	switch {
	case addr == "":
		addr = defaultHTTPAddr
	case !strings.Contains(addr, ":"):
		addr = ":" + addr
	}

	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           withRequestID(withAccessLog(logger, withRecovery(logger, handler))),
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
		},
		logger: logger,
	}
}

func (h *HTTPServer) Addr() string {
	return h.server.Addr
}

func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

func (h *HTTPServer) Start() error {
	h.logger.WithField("addr", h.server.Addr).Info("http server starting")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *HTTPServer) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// NewHTTPMux returns a mux answering /healthz.
func NewHTTPMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func withRecovery(logger *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.WithFields(logrus.Fields{
					"path":       r.URL.Path,
					"request_id": r.Header.Get(requestIDHeader),
				}).Errorf("handler panic: %v", recovered)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func withAccessLog(logger *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"request_id": r.Header.Get(requestIDHeader),
			"elapsed":    time.Since(started).String(),
		}).Info("http request")
	})
}
