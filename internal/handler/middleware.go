package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hdnotes/notes-api/internal/model"
	"github.com/hdnotes/notes-api/internal/repository"
	"github.com/hdnotes/notes-api/shared/auth"
)

type contextKey struct{}

var userContextKey = contextKey{}

// UserFromContext returns the authenticated user attached by Authenticate,
// or nil when the request did not pass through the guard.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// AccessGuard gates protected endpoints: it extracts a session token, verifies
// it, resolves the owning user and rejects unverified accounts.
type AccessGuard struct {
	jwtAuth  auth.JWTAuthenticator
	userRepo repository.UserRepository
	cookies  CookieWriter
}

// NewAccessGuard creates a new AccessGuard instance.
func NewAccessGuard(
	jwtAuth auth.JWTAuthenticator,
	userRepo repository.UserRepository,
	cookies CookieWriter,
) *AccessGuard {
	return &AccessGuard{
		jwtAuth:  jwtAuth,
		userRepo: userRepo,
		cookies:  cookies,
	}
}

// Authenticate is the middleware applied ahead of every protected route.
func (g *AccessGuard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "Access token is required")
			return
		}

		claims, err := g.jwtAuth.VerifySessionToken(token)
		if err != nil {
			// A stale session cookie would otherwise fail every request.
			g.cookies.clear(w, sessionCookieName)

			if errors.Is(err, auth.ErrTokenExpired) {
				respondError(w, http.StatusUnauthorized, "Token has expired. Please login again.")
				return
			}

			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := g.userRepo.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				respondError(w, http.StatusUnauthorized, "User not found")
				return
			}

			respondInternalError(w)
			return
		}

		if !user.Verified {
			respondError(w, http.StatusUnauthorized, "Email not verified")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken prefers an explicit Authorization header, falling back to the
// session cookie for browser clients.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// RequestLogger logs one line per request with method, path, status and duration.
func RequestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// CORS allows the configured frontend origin with credentials, mirroring the
// cookie-based auth contract.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == frontendURL {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Expose-Headers", "Authorization")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
