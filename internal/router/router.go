package router

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mq-dashboard/internal/domain"
	"mq-dashboard/internal/endpoints"
	"mq-dashboard/internal/metrics"
	"mq-dashboard/internal/util"
)

const RequestIDHeader = "X-Request-ID"

// Options selects what the API server mounts. A nil Store leaves the history
// route unmounted; a nil Metrics leaves /metrics unmounted.
type Options struct {
	UpstreamURL string
	Client      *http.Client
	Store       domain.SampleStore
	Metrics     *metrics.Manager
	Started     time.Time
}

func NewRouter(opts Options, webLogger *util.Logger) *mux.Router {
	r := mux.NewRouter()

	addRoutes(r, opts, webLogger)

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(webLogger))
	if opts.Metrics != nil {
		r.Use(metricsMiddleware(opts.Metrics))
	}

	return r
}

func addRoutes(r *mux.Router, opts Options, webLogger *util.Logger) {

	proxy := &endpoints.Proxy{}
	proxy.Init(opts.UpstreamURL, opts.Client, webLogger, opts.Metrics)
	r.HandleFunc("/api/metrics", proxy.GetMetricsHandler).Methods("GET")

	started := opts.Started
	if started.IsZero() {
		started = time.Now()
	}
	health := &endpoints.Health{}
	health.Init(started)
	r.HandleFunc("/api/health", health.GetHealthHandler).Methods("GET")

	if opts.Store != nil {
		history := &endpoints.History{}
		history.Init(opts.Store, webLogger)
		r.HandleFunc("/api/history/{source}/{limit}/{offset}", history.GetHistoryHandler).Methods("GET")
	}

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Run serves until SIGINT/SIGTERM or ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, opts Options, webLogger *util.Logger) error {
	appRouter := NewRouter(opts, webLogger)

	server := NewServer(addr, appRouter)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		webLogger.Info("Listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	webLogger.Info("Shutting down server...")
	if err := gracefulShutdown(server, 25*time.Second); err != nil {
		webLogger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	webLogger.Info("Server stopped gracefully.")
	return nil
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(logger *util.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info("Request",
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.String("request_id", r.Header.Get(RequestIDHeader)))
			next.ServeHTTP(w, r)
		})
	}
}

func metricsMiddleware(m *metrics.Manager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := metrics.NewStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.ObserveHTTP(route, r.Method, rec.Status, time.Since(start))
		})
	}
}
