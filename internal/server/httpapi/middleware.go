package httpapi

import (
	"context"
	"net/http"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// bearerFromRequest returns the session token attached to the request. The
// Authorization header wins; the login cookie is the fallback.
func bearerFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// authorized resolves the caller's identity exactly once per request and
// stores the user in the request context for the wrapped handler.
func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		bearer := bearerFromRequest(r)
		if bearer == "" {
			s.writeError(r.Context(), w, common.ErrInvalidToken, "missing token")
			return
		}

		user, err := s.tokens.ResolveFromToken(r.Context(), bearer)
		if err != nil {
			s.writeError(r.Context(), w, err, "token resolution")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
