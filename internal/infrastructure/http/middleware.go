package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"medicart/internal/infrastructure/session"
	"medicart/internal/pkg/logging"
)

type userKey struct{}

func usernameFrom(r *http.Request) string {
	if username, ok := r.Context().Value(userKey{}).(string); ok {
		return username
	}
	return ""
}

// authenticate resolves the session cookie to a username and stores it in the
// request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, errors.New("not logged in"))
			return
		}
		username, err := h.sessions.Get(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, errors.New("session expired"))
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.users.IsAdmin(r.Context(), usernameFrom(r)) {
			writeError(w, http.StatusForbidden, errors.New("admin privilege required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ObservabilityMiddleware combines W3C trace-context extraction, a
// request-scoped logger with a generated request id, and HTTP metrics with
// low-cardinality route labels.
func ObservabilityMiddleware(
	base *zap.Logger,
	requests *prometheus.CounterVec,
	durations *prometheus.HistogramVec,
) mux.MiddlewareFunc {
	prop := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)

			fields := []zap.Field{zap.String("request_id", rid)}
			if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
				fields = append(fields,
					zap.String("trace_id", sc.TraceID().String()),
					zap.String("span_id", sc.SpanID().String()),
				)
			}
			ctx = logging.ContextWithLogger(ctx, base.With(fields...))

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			route := routeTemplate(r)
			status := strconv.Itoa(rec.status)
			if requests != nil {
				requests.WithLabelValues(r.Method, route, status).Inc()
			}
			if durations != nil {
				durations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
