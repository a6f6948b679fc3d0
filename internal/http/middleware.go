package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const SessionCookie = "storefront_session"

type contextKey string

const sessionContextKey contextKey = "session"

// SessionMiddleware resolves the caller's session from the signed session
// cookie. A missing or invalid cookie starts a fresh session.
func SessionMiddleware(sessions *session.Manager, tokens *session.Tokens, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sessionIDFromCookie(r, tokens)
			if !ok {
				id = session.NewID()
				token, err := tokens.Issue(id)
				if err != nil {
					logger.Error("issue session token error", zap.Error(err))
					respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    token,
					Path:     "/",
					Expires:  time.Now().Add(tokens.TTL()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			s := sessions.Get(r.Context(), id)
			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromCookie(r *http.Request, tokens *session.Tokens) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	id, err := tokens.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionContextKey).(*session.Session)
	return s
}

// RequestIDMiddleware echoes the request ID assigned by chi's RequestID
// middleware back to the client.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}
		next.ServeHTTP(w, r)
	})
}

// BodyLimit caps the size of request bodies.
func BodyLimit(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}
