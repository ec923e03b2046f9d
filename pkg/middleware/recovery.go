package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"barbershop/pkg/logger"
)

type headerTracker struct {
	http.ResponseWriter
	sent bool
}

func (t *headerTracker) WriteHeader(code int) {
	t.sent = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *headerTracker) Write(b []byte) (int, error) {
	t.sent = true
	return t.ResponseWriter.Write(b)
}

// Recovery turns a handler panic into a 500. http.ErrAbortHandler is passed
// through so net/http can abort the connection; once headers are out only the
// log entry is produced.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &headerTracker{ResponseWriter: w}
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}

				log.Error("Handler panicked",
					"request_id", RequestIDFrom(r.Context()),
					"panic", p,
					"method", r.Method,
					"path", r.URL.Path,
					"headers_sent", tw.sent,
					"stack", string(debug.Stack()),
				)
				if !tw.sent {
					writeJSONError(w, http.StatusInternalServerError, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`)
				}
			}()

			next.ServeHTTP(tw, r)
		})
	}
}
