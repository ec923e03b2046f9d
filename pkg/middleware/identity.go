package middleware

import (
	"context"
	"net/http"

	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/google/uuid"
)

// Identity headers are set by the gateway after it has verified the caller.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

const actorKey contextKey = "actor"

// Identity attaches the caller to the request context. Requests without
// identity headers pass through anonymously; malformed headers are rejected.
func Identity(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(HeaderUserID)
			rawRole := r.Header.Get(HeaderUserRole)
			if rawID == "" && rawRole == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, ok := parseActor(rawID, rawRole)
			if !ok {
				log.Warn("Rejected malformed identity headers",
					"request_id", RequestIDFrom(r.Context()),
					"user_id", rawID,
					"role", rawRole,
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusUnauthorized, `{"error":"Invalid identity headers","code":"UNAUTHORIZED"}`)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func parseActor(rawID, rawRole string) (model.Actor, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return model.Actor{}, false
	}
	role, ok := model.ParseRole(rawRole)
	if !ok {
		return model.Actor{}, false
	}
	return model.Actor{UserID: id.String(), Role: role}, true
}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	return actor, ok
}
