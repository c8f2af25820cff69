package handler

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	oauth2v2 "google.golang.org/api/oauth2/v2"

	"github.com/hdnotes/notes-api/internal/usecase"
	"github.com/hdnotes/notes-api/shared/provider"
)

// GoogleProvider is the slice of the OAuth provider the handlers depend on.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*oauth2v2.Userinfo, error)
}

// GoogleAuth handles GET /api/auth/google: it stores a state nonce in a
// short-lived cookie and redirects to the provider's consent page.
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	state := provider.NewState()
	h.cookies.set(w, stateCookieName, state, stateCookieTTL)

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback. On success the session
// token is handed to the frontend in the redirect URL; the cookie flow is
// bypassed entirely.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.cookies.clear(w, stateCookieName)

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn().Str("error", errParam).Msg("google oauth denied")
		h.redirectSignin(w, r, "oauth_failed")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.redirectSignin(w, r, "oauth_failed")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectSignin(w, r, "oauth_failed")
		return
	}

	token, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Msg("google oauth code exchange failed")
		h.redirectSignin(w, r, "oauth_error")
		return
	}

	userInfo, err := h.google.FetchUserInfo(r.Context(), token)
	if err != nil {
		h.logger.Error().Err(err).Msg("google userinfo fetch failed")
		h.redirectSignin(w, r, "oauth_error")
		return
	}

	result, err := h.authUsecase.OAuthLogin(r.Context(), usecase.OAuthProfile{
		ProviderID: userInfo.Id,
		Email:      userInfo.Email,
		Name:       userInfo.Name,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("google oauth login failed")
		h.redirectSignin(w, r, "oauth_error")
		return
	}

	http.Redirect(w, r, h.frontendURL+"/auth/success?token="+result.SessionToken, http.StatusFound)
}

func (h *AuthHandler) redirectSignin(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, h.frontendURL+"/signin?error="+reason, http.StatusFound)
}
