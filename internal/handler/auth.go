package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hdnotes/notes-api/internal/payload"
	"github.com/hdnotes/notes-api/internal/usecase"
	"github.com/hdnotes/notes-api/shared/validator"
)

// AuthHandler exposes the passcode and OAuth sign-in endpoints.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	google      GoogleProvider
	validate    *validator.Validator
	cookies     CookieWriter
	frontendURL string
	logger      *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	google GoogleProvider,
	validate *validator.Validator,
	cookies CookieWriter,
	frontendURL string,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		google:      google,
		validate:    validate,
		cookies:     cookies,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := h.validate.Struct(req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Date of birth must be in YYYY-MM-DD format")
		return
	}

	otpToken, err := h.authUsecase.Signup(r.Context(), usecase.SignupParams{
		Name:  req.Name,
		Email: req.Email,
		DOB:   dob,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrUserAlreadyExists) {
			respondError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}

		h.logger.Error().Err(err).Msg("signup failed")
		respondInternalError(w)
		return
	}

	h.cookies.setOTPToken(w, otpToken)
	respondSuccess(w, http.StatusCreated,
		"User created successfully. Please verify your email with the OTP sent.", nil)
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := h.validate.Struct(req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	var otpToken string
	if cookie, err := r.Cookie(otpCookieName); err == nil {
		otpToken = cookie.Value
	}

	result, err := h.authUsecase.VerifyOTP(r.Context(), usecase.VerifyOTPParams{
		Email:    req.Email,
		OTP:      req.OTP,
		OTPToken: otpToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrOTPTokenMissing):
			respondError(w, http.StatusBadRequest, "No OTP token found. Please request a new OTP.")
		case errors.Is(err, usecase.ErrOTPTokenExpired):
			respondError(w, http.StatusBadRequest, "OTP has expired. Please request a new one.")
		case errors.Is(err, usecase.ErrOTPTokenInvalid):
			respondError(w, http.StatusBadRequest, "Invalid OTP token. Please request a new one.")
		case errors.Is(err, usecase.ErrOTPMismatch):
			respondError(w, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error().Err(err).Msg("OTP verification failed")
			respondInternalError(w)
		}
		return
	}

	message := "Login successful"
	if result.FirstVerification {
		message = "Email verified successfully. Welcome!"
	}

	h.cookies.clear(w, otpCookieName)
	h.cookies.setSessionToken(w, result.SessionToken)
	w.Header().Set("Authorization", "Bearer "+result.SessionToken)

	respondSuccess(w, http.StatusOK, message, map[string]any{
		"user": map[string]any{
			"id":    result.User.ID.Hex(),
			"email": result.User.Email,
			"name":  result.User.Name,
		},
	})
}

// ResendOTP handles POST /api/auth/resend-otp.
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req payload.ResendOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := h.validate.Struct(req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	otpToken, err := h.authUsecase.ResendOTP(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			respondError(w, http.StatusBadRequest, "Email is already verified")
		default:
			h.logger.Error().Err(err).Msg("resend OTP failed")
			respondInternalError(w)
		}
		return
	}

	h.cookies.setOTPToken(w, otpToken)
	respondSuccess(w, http.StatusOK, "OTP sent successfully", nil)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := h.validate.Struct(req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	otpToken, err := h.authUsecase.Login(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "No account found with this email. Please sign up first.")
		case errors.Is(err, usecase.ErrUserNotVerified):
			respondError(w, http.StatusUnauthorized, "Please verify your email before logging in")
		default:
			h.logger.Error().Err(err).Msg("login failed")
			respondInternalError(w)
		}
		return
	}

	h.cookies.setOTPToken(w, otpToken)
	respondSuccess(w, http.StatusOK, "OTP sent to your email. Please verify to login.", nil)
}

// Logout handles POST /api/auth/logout. It only clears cookies; issued tokens
// stay valid until their natural expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clear(w, sessionCookieName)
	h.cookies.clear(w, otpCookieName)

	respondSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Access token is required")
		return
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{
		"user": payload.UserResponse{
			ID:        user.ID.Hex(),
			Email:     user.Email,
			Name:      user.Name,
			Verified:  user.Verified,
			CreatedAt: user.CreatedAt,
		},
	})
}
