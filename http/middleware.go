package http

import (
	"context"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"

	"aqiserve/predictor"
)

// ContextKey context key type
type ContextKey string

const (
	// RequestIDKey request id key
	RequestIDKey ContextKey = "request_id"
	// StartTimeKey start time key
	StartTimeKey ContextKey = "start_time"

	requestIDHeader = "X-Request-ID"
)

// Middleware HTTP middleware
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one listed runs first.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// LoggerMiddleware assigns a request id (reusing a valid incoming
// X-Request-ID) and writes one access log line per request.
func LoggerMiddleware(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = context.WithValue(ctx, StartTimeKey, start)
			ctx = predictor.WithRequestID(ctx, requestID)
			r = r.WithContext(ctx)
			w.Header().Set(requestIDHeader, requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// RecoveryMiddleware turns a panic into a 500 and keeps the process alive.
func RecoveryMiddleware(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)
					logger.Error("panic recovered",
						zap.Any("panic", err),
						zap.String("request_id", GetRequestID(r.Context())),
						zap.ByteString("stack", buf[:n]),
					)
					respondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows the given origins; "*" allows any. The request
// origin is echoed back rather than "*" so credentialed requests work, and
// preflights may ask for any request header.
func CORSMiddleware(origins []string) Middleware {
	allowOrigin := func(origin string) bool {
		if origin == "" {
			return false
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
	opts := []handlers.CORSOption{
		handlers.AllowedOriginValidator(allowOrigin),
		handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
		handlers.AllowCredentials(),
	}

	return func(next http.Handler) http.Handler {
		cors := handlers.CORS(opts...)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")

			requested := r.Header.Get("Access-Control-Request-Headers")
			if r.Method == http.MethodOptions && requested != "" {
				// reflect whatever the preflight asks for
				preflight := append(opts[:len(opts):len(opts)], handlers.AllowedHeaders(strings.Split(requested, ",")))
				handlers.CORS(preflight...)(next).ServeHTTP(w, r)
				return
			}
			cors.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware security headers
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// RequestSizeMiddleware request body limit
func RequestSizeMiddleware(maxSize int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// GetRequestID returns the request id from ctx
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetStartTime returns the request start time from ctx
func GetStartTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}
