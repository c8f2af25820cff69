package handler

import (
	"net/http"
	"time"

	"github.com/hdnotes/notes-api/shared/auth"
)

const (
	otpCookieName     = "otpToken"
	sessionCookieName = "authToken"
	stateCookieName   = "oauthState"

	stateCookieTTL = 10 * time.Minute
)

// CookieWriter centralizes the cookie options the auth flows share. In
// production cookies must survive cross-site redirects from the frontend,
// hence Secure + SameSite=None; development keeps Lax over plain HTTP.
type CookieWriter struct {
	secure bool
}

// NewCookieWriter creates a CookieWriter for the given environment.
func NewCookieWriter(production bool) CookieWriter {
	return CookieWriter{secure: production}
}

func (c CookieWriter) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite(),
	})
}

func (c CookieWriter) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite(),
	})
}

func (c CookieWriter) setOTPToken(w http.ResponseWriter, token string) {
	c.set(w, otpCookieName, token, auth.OTPTokenTTL)
}

func (c CookieWriter) setSessionToken(w http.ResponseWriter, token string) {
	c.set(w, sessionCookieName, token, auth.SessionTokenTTL)
}

func (c CookieWriter) sameSite() http.SameSite {
	if c.secure {
		return http.SameSiteNoneMode
	}

	return http.SameSiteLaxMode
}
