package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RequestIDHeader carries the correlation id for a request
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// GetRequestID returns the correlation id stored by RequestID, if any
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ExtractRequestID returns the correlation id the client sent. The canonical
// header wins; otherwise any header that matches it case-insensitively once
// underscores are read as dashes is accepted, as proxies rewriting CGI-style
// names (HTTP_X_REQUEST_ID) produce. The first non-empty value is used.
func ExtractRequestID(h http.Header) string {
	if id := strings.TrimSpace(h.Get(RequestIDHeader)); id != "" {
		return id
	}
	for name, values := range h {
		if !strings.EqualFold(strings.ReplaceAll(name, "_", "-"), RequestIDHeader) {
			continue
		}
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// RequestID resolves the request's correlation id and stores it in the
// context. With generate set, requests without one get a fresh UUID, which is
// also written to the request header so downstream handlers see it. A known
// id is echoed back in the response header.
func RequestID(generate bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ExtractRequestID(r.Header)
			if id == "" && generate {
				id = uuid.NewString()
				r.Header.Set(RequestIDHeader, id)
			}
			if id != "" {
				w.Header().Set(RequestIDHeader, id)
				r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

// Logging logs one record per request once the handler returns
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			status := rw.status
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if id := GetRequestID(r.Context()); id != "" {
				attrs = append(attrs, "request_id", id)
			}
			logger.Info("http request", attrs...)
		})
	}
}

// Recoverer recovers from panics, logs them and answers 500
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic serving request",
						"path", r.URL.Path,
						"error", fmt.Sprint(rec),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// BasicAuth guards next with HTTP basic auth against a username and a
// bcrypt password hash.
func BasicAuth(realm, username, passwordHash string) func(http.Handler) http.Handler {
	hash := []byte(passwordHash)
	challenge := fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", realm)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
				bcrypt.CompareHashAndPassword(hash, []byte(pass)) != nil {
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
