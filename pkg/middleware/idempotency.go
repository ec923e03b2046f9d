package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"barbershop/pkg/cache"
	"barbershop/pkg/logger"
)

const (
	IdempotencyHeader  = "Idempotency-Key"
	ReplayedHeader     = "Idempotent-Replayed"
	idempotencyKeyBase = "idempotency:"
)

// StoredResponse is what a replay writes back. It round-trips through the
// cache as JSON.
type StoredResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the first 2xx response to a repeated write carrying the
// same key, for ttl. Keys are scoped by caller, method and path, so two users
// sending the same key never see each other's responses. A cache outage
// degrades to executing the request again.
func Idempotency(log *logger.Logger, store cache.Cache, ttl time.Duration, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := idempotencyKey(r, headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			var stored StoredResponse
			if err := store.Get(r.Context(), key, &stored); err == nil {
				replay(w, &stored)
				return
			}

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status < 200 || rec.status >= 300 {
				return
			}

			headers := w.Header().Clone()
			headers.Del(RequestIDHeader)
			err := store.Set(r.Context(), key, StoredResponse{
				StatusCode: rec.status,
				Headers:    headers,
				Body:       rec.body.Bytes(),
			}, ttl)
			if err != nil {
				log.Warn("Idempotency cache write failed",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
			}
		})
	}
}

func idempotencyKey(r *http.Request, headerName string) string {
	raw := r.Header.Get(headerName)
	if raw == "" || !isWriteMethod(r.Method) {
		return ""
	}

	owner := "anonymous"
	if actor, ok := ActorFrom(r.Context()); ok {
		owner = actor.UserID
	}
	sum := sha256.Sum256([]byte(owner + "|" + r.Method + "|" + r.URL.Path + "|" + raw))
	return idempotencyKeyBase + hex.EncodeToString(sum[:])
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func replay(w http.ResponseWriter, stored *StoredResponse) {
	for key, values := range stored.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(stored.StatusCode)
	_, _ = w.Write(stored.Body)
}
