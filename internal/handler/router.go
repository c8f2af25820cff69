package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hdnotes/notes-api/internal/payload"
)

// NewRouter mounts the full HTTP surface under /api.
func NewRouter(
	authHandler *AuthHandler,
	noteHandler *NoteHandler,
	guard *AccessGuard,
	frontendURL string,
	logger *zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(frontendURL))

	r.Get("/", root)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/verify-otp", authHandler.VerifyOTP)
			r.Post("/resend-otp", authHandler.ResendOTP)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			r.Get("/google", authHandler.GoogleAuth)
			r.Get("/google/callback", authHandler.GoogleCallback)

			r.With(guard.Authenticate).Get("/profile", authHandler.Profile)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(guard.Authenticate)

			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)
			r.Get("/{id}", noteHandler.GetByID)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
		})
	})

	return r
}

func root(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, payload.Response{
		Success: true,
		Message: "Highway Delite Notes API",
		Data: map[string]any{
			"version":       "1.0.0",
			"documentation": "/api/health",
		},
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, "Server is running", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
