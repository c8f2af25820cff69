package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hdnotes/notes-api/internal/model"
	"github.com/hdnotes/notes-api/internal/repository"
	"github.com/hdnotes/notes-api/shared/auth"
)

// AuthUsecase drives the passcode and OAuth sign-in flows.
type AuthUsecase interface {
	// Signup registers an unverified user (unless one already exists) and
	// dispatches a passcode. It returns the signed OTP token for the cookie.
	Signup(ctx context.Context, params SignupParams) (string, error)

	// VerifyOTP checks a submitted passcode against the OTP token and issues
	// a session token. firstVerification reports whether this call flipped
	// the user to verified, as opposed to a login on an already-verified account.
	VerifyOTP(ctx context.Context, params VerifyOTPParams) (*VerifyOTPResult, error)

	// ResendOTP re-dispatches a passcode to a not-yet-verified user.
	ResendOTP(ctx context.Context, email string) (string, error)

	// Login dispatches a login passcode to a verified user.
	Login(ctx context.Context, email string) (string, error)

	// OAuthLogin resolves an external provider profile to a local user and
	// issues a session token, bypassing the passcode flow.
	OAuthLogin(ctx context.Context, profile OAuthProfile) (*OAuthLoginResult, error)
}

// SignupParams defines the parameters for user signup.
type SignupParams struct {
	Name  string
	Email string
	DOB   time.Time
}

// VerifyOTPParams defines the parameters for passcode verification.
type VerifyOTPParams struct {
	Email    string
	OTP      string
	OTPToken string
}

// VerifyOTPResult is the outcome of a successful passcode verification.
type VerifyOTPResult struct {
	User              *model.User
	SessionToken      string
	FirstVerification bool
}

// OAuthProfile is the external account profile handed back by the provider.
type OAuthProfile struct {
	ProviderID string
	Email      string
	Name       string
}

// OAuthOutcome tags how an OAuth login was resolved to a local user.
type OAuthOutcome int

const (
	// OAuthMatchedByProvider means the provider id was already linked.
	OAuthMatchedByProvider OAuthOutcome = iota

	// OAuthLinkedByEmail means an existing account gained the provider id.
	OAuthLinkedByEmail

	// OAuthCreated means a new pre-verified account was created.
	OAuthCreated
)

// OAuthLoginResult is the outcome of a successful OAuth login.
type OAuthLoginResult struct {
	User         *model.User
	SessionToken string
	Outcome      OAuthOutcome
}

// MailSender is the subset of the mailer the auth flows depend on.
type MailSender interface {
	SendOTP(to, otp, name string) error
	SendWelcome(to, name string) error
}

var (
	ErrUserAlreadyExists = errors.New("user already exists with this email")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserNotVerified   = errors.New("email is not verified")
	ErrAlreadyVerified   = errors.New("email is already verified")
	ErrOTPTokenMissing   = errors.New("no OTP token found")
	ErrOTPTokenExpired   = errors.New("OTP has expired")
	ErrOTPTokenInvalid   = errors.New("OTP token is invalid")
	ErrOTPMismatch       = errors.New("OTP does not match")
)

type authUsecase struct {
	userRepo    repository.UserRepository
	jwtAuth     auth.JWTAuthenticator
	mailer      MailSender
	logger      *zerolog.Logger
	development bool
}

// NewAuthUsecase creates a new AuthUsecase instance. In development mode
// generated passcodes are logged at debug level.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	jwtAuth auth.JWTAuthenticator,
	mailer MailSender,
	logger *zerolog.Logger,
	development bool,
) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		jwtAuth:     jwtAuth,
		mailer:      mailer,
		logger:      logger,
		development: development,
	}
}

func (u *authUsecase) Signup(ctx context.Context, params SignupParams) (string, error) {
	email := NormalizeEmail(params.Email)

	existing, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	if existing != nil && existing.Verified {
		return "", ErrUserAlreadyExists
	}

	// The user row is persisted before any mail dispatch is attempted, so a
	// failed send still leaves an account that can resend.
	if existing == nil {
		if _, err := u.userRepo.CreateUser(ctx, &model.User{
			Name:     strings.TrimSpace(params.Name),
			Email:    email,
			DOB:      params.DOB,
			Verified: false,
		}); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return "", ErrUserAlreadyExists
			}

			return "", err
		}
	}

	return u.dispatchOTP(email, strings.TrimSpace(params.Name))
}

func (u *authUsecase) VerifyOTP(ctx context.Context, params VerifyOTPParams) (*VerifyOTPResult, error) {
	if params.OTPToken == "" {
		return nil, ErrOTPTokenMissing
	}

	claims, err := u.jwtAuth.VerifyOTPToken(params.OTPToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrOTPTokenExpired
		}

		return nil, ErrOTPTokenInvalid
	}

	email := NormalizeEmail(params.Email)
	if claims.Email != email || claims.OTP != params.OTP {
		return nil, ErrOTPMismatch
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	firstVerification := !user.Verified

	if firstVerification {
		verified := true
		user, err = u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
			Verified: &verified,
		})
		if err != nil {
			return nil, err
		}

		// Welcome mail is fire-and-forget; a failed send never fails verification.
		go u.sendWelcome(user.Email, user.Name)
	}

	sessionToken, err := u.jwtAuth.MintSessionToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}

	return &VerifyOTPResult{
		User:              user,
		SessionToken:      sessionToken,
		FirstVerification: firstVerification,
	}, nil
}

func (u *authUsecase) ResendOTP(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}

		return "", err
	}

	if user.Verified {
		return "", ErrAlreadyVerified
	}

	return u.dispatchOTP(user.Email, user.Name)
}

func (u *authUsecase) Login(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}

		return "", err
	}

	if !user.Verified {
		return "", ErrUserNotVerified
	}

	return u.dispatchOTP(user.Email, user.Name)
}

func (u *authUsecase) OAuthLogin(ctx context.Context, profile OAuthProfile) (*OAuthLoginResult, error) {
	user, outcome, err := u.resolveOAuthUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	sessionToken, err := u.jwtAuth.MintSessionToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}

	return &OAuthLoginResult{
		User:         user,
		SessionToken: sessionToken,
		Outcome:      outcome,
	}, nil
}

// resolveOAuthUser maps a provider profile to a local user: by provider id,
// by email (linking the provider id and forcing verification), or by
// creating a pre-verified account.
func (u *authUsecase) resolveOAuthUser(
	ctx context.Context,
	profile OAuthProfile,
) (*model.User, OAuthOutcome, error) {
	user, err := u.userRepo.GetUserByGoogleID(ctx, profile.ProviderID)
	if err == nil {
		return user, OAuthMatchedByProvider, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, err
	}

	email := NormalizeEmail(profile.Email)

	user, err = u.userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		// Provider accounts are trusted pre-verified.
		verified := true
		user, err = u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
			GoogleID: &profile.ProviderID,
			Verified: &verified,
		})
		if err != nil {
			return nil, 0, err
		}

		return user, OAuthLinkedByEmail, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, err
	}

	user, err = u.userRepo.CreateUser(ctx, &model.User{
		Name:     profile.Name,
		Email:    email,
		Verified: true,
		GoogleID: profile.ProviderID,
	})
	if err != nil {
		return nil, 0, err
	}

	return user, OAuthCreated, nil
}

// dispatchOTP generates a passcode, mints its token and sends the mail.
// A failed send aborts the flow; the caller's request must fail.
func (u *authUsecase) dispatchOTP(email, name string) (string, error) {
	otp, err := auth.GenerateOTP()
	if err != nil {
		return "", err
	}

	if u.development {
		u.logger.Debug().Str("email", email).Str("otp", otp).Msg("generated OTP")
	}

	otpToken, err := u.jwtAuth.MintOTPToken(email, otp)
	if err != nil {
		return "", err
	}

	if err := u.mailer.SendOTP(email, otp, name); err != nil {
		return "", err
	}

	return otpToken, nil
}

func (u *authUsecase) sendWelcome(email, name string) {
	if err := u.mailer.SendWelcome(email, name); err != nil {
		u.logger.Error().Err(err).Str("email", email).Msg("failed to send welcome email")
	}
}

// NormalizeEmail lower-cases and trims an email address so lookups and the
// unique index agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
