package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// Outcome is the logical result of handling a request, as distinct from
// its HTTP status: this API answers every request with status 200 and
// reports failure inside the JSON envelope, so the status code alone
// cannot tell Logger whether a request succeeded.
type Outcome int

const (
	// OutcomeSuccess is the default outcome a handler that never calls
	// SetOutcome is assumed to have.
	OutcomeSuccess Outcome = iota
	OutcomeClientError
	OutcomeServerError
)

type outcomeCtxKey struct{}

// withOutcome attaches a mutable outcome slot to ctx for SetOutcome to
// write into and Logger to read back after the handler returns.
func withOutcome(ctx context.Context) (context.Context, *Outcome) {
	o := new(Outcome)
	return context.WithValue(ctx, outcomeCtxKey{}, o), o
}

// SetOutcome records the logical outcome of handling the request carried
// by ctx. Handlers that never call SetOutcome are logged as a success.
func SetOutcome(ctx context.Context, outcome Outcome) {
	if o, ok := ctx.Value(outcomeCtxKey{}).(*Outcome); ok {
		*o = outcome
	}
}

// Middleware wraps an http.Handler, the conventional net/http decorator
// shape, rather than a routing framework's own handler type.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares in the order given, outermost first: the first
// middleware in mw sees the request first and the response last.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Logger returns a middleware that logs one structured line per request:
// method, path, status, size and latency.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := NewResponseWriter(w)
			defer rw.Release()

			ctx, outcome := withOutcome(r.Context())
			next.ServeHTTP(rw, r.WithContext(ctx))

			latency := time.Since(start)
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.Status()),
				slog.Int("size", rw.Size()),
				slog.Duration("latency", latency),
			}
			if q := r.URL.Query().Get("type"); q != "" {
				attrs = append(attrs, slog.String("type", q))
			}

			switch {
			case rw.Status() >= 500, *outcome == OutcomeServerError:
				logger.Error(r.URL.Path, attrs...)
			case rw.Status() >= 400, *outcome == OutcomeClientError:
				logger.Warn(r.URL.Path, attrs...)
			default:
				logger.Info(r.URL.Path, attrs...)
			}
		})
	}
}

// Recovery returns a middleware that recovers from panics, logs the panic
// value and a short stack trace via logger, and responds with a generic
// 500 so a caller-induced programmer error (e.g. InvalidChild bugs in a
// handler) never crashes the process.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("recovered from panic",
						slog.String("path", r.URL.Path),
						slog.Any("panic", err),
						slog.String("stack", string(debug.Stack())),
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
