package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionTokenTTL is how long a session token stays valid after issuance.
	SessionTokenTTL = 7 * 24 * time.Hour

	// OTPTokenTTL is how long a one-time passcode token stays valid.
	OTPTokenTTL = 5 * time.Minute
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// SessionClaims identifies an authenticated user for the session token lifetime.
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// OTPClaims binds an email address to a freshly generated passcode. The raw
// passcode never touches server-side storage; this token is its only carrier.
type OTPClaims struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	jwt.RegisteredClaims
}

// JWTAuthenticator mints and verifies both token classes with a single shared secret.
type JWTAuthenticator struct {
	secret   string
	audience string
	issuer   string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(secret, audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		secret:   secret,
		audience: audience,
		issuer:   issuer,
	}
}

// MintSessionToken issues a signed session token for the given user.
func (a *JWTAuthenticator) MintSessionToken(userID, email string) (string, error) {
	claims := SessionClaims{
		UserID:           userID,
		Email:            email,
		RegisteredClaims: a.registeredClaims(userID, SessionTokenTTL),
	}

	return a.generateToken(claims)
}

// MintOTPToken issues a signed short-lived token binding email to otp.
func (a *JWTAuthenticator) MintOTPToken(email, otp string) (string, error) {
	claims := OTPClaims{
		Email:            email,
		OTP:              otp,
		RegisteredClaims: a.registeredClaims(email, OTPTokenTTL),
	}

	return a.generateToken(claims)
}

// VerifySessionToken validates a session token and returns its claims.
// Expired tokens fail with ErrTokenExpired, anything else with ErrTokenInvalid.
func (a *JWTAuthenticator) VerifySessionToken(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := a.validateToken(token, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// VerifyOTPToken validates an OTP token and returns its claims.
func (a *JWTAuthenticator) VerifyOTPToken(token string) (*OTPClaims, error) {
	claims := &OTPClaims{}
	if err := a.validateToken(token, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func (a *JWTAuthenticator) registeredClaims(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()

	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    a.issuer,
		Audience:  jwt.ClaimStrings{a.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (a *JWTAuthenticator) generateToken(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(a.secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

func (a *JWTAuthenticator) validateToken(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(a.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}

		return ErrTokenInvalid
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}

// GenerateOTP returns a uniform-random 6-digit decimal passcode in the
// inclusive range 100000-999999, drawn from a cryptographic source.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
