package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"decoderd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Translate(ctx context.Context, req types.TranslateRequest, w io.Writer, flush func()) error
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	// x-ndjson is not in the default compressible types, so streams stay unbuffered
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/translate", func(w http.ResponseWriter, r *http.Request) {
		handleTranslate(svc, w, r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("draining"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: corsAllowedMethods,
		AllowedHeaders: corsAllowedHeaders,
		MaxAge:         300,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"Content-Type", "X-Log-Level", "X-Request-Id"}
	}
	return opts
}

func handleTranslate(svc Service, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		IncrementRejected("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// oversized bodies also land here; the limit is not disclosed
		IncrementRejected("invalid_body")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Sentences) == 0 {
		IncrementRejected("empty")
		writeJSONError(w, http.StatusBadRequest, "sentences are required")
		return
	}

	rid := middleware.GetReqID(r.Context())
	lvl := requestLogLevel(r)
	start := time.Now()
	logEnd := func(status int, err error) {
		if lvl < LevelInfo && (err == nil || lvl < LevelError) {
			return
		}
		if zlog != nil {
			z := zlog.Info().Int("status", status).Dur("dur", time.Since(start)).Str("request_id", rid)
			if err != nil {
				z = z.Err(err)
			}
			z.Msg("translate end")
			return
		}
		log.Printf("translate end status=%d dur=%s err=%v", status, time.Since(start), err)
	}
	if lvl >= LevelInfo {
		if zlog != nil {
			zlog.Info().Str("path", r.URL.Path).Int("sentences", len(req.Sentences)).Str("request_id", rid).Msg("translate start")
		} else {
			log.Printf("translate start path=%s sentences=%d", r.URL.Path, len(req.Sentences))
		}
	}

	sw := &startedWriter{w: w}
	writer := io.Writer(sw)
	if lvl >= LevelDebug {
		writer = io.MultiWriter(sw, &loggingLineWriter{requestID: rid})
	}
	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}

	// shutdown of the server base context cancels the request too
	ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
	defer cancel()
	if translateTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, translateTimeout)
		defer tcancel()
	}

	err := svc.Translate(ctx, req, writer, flush)
	if err == nil {
		logEnd(http.StatusOK, nil)
		return
	}
	if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
		// client went away or the server is stopping
		logEnd(499, err)
		return
	}
	if sw.started {
		// headers are gone; the stream just ends
		logEnd(http.StatusOK, err)
		return
	}
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		IncrementRejected("draining")
	}
	writeJSONError(w, status, err.Error())
	logEnd(status, err)
}

// startedWriter sets the NDJSON content type on the first write so errors
// returned before any output can still be sent as JSON.
type startedWriter struct {
	w       http.ResponseWriter
	started bool
}

func (sw *startedWriter) Write(p []byte) (int, error) {
	if !sw.started {
		sw.started = true
		sw.w.Header().Set("Content-Type", "application/x-ndjson")
		sw.w.WriteHeader(http.StatusOK)
	}
	return sw.w.Write(p)
}
