// internal/application/usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
)

// AuthSession is returned by a successful password sign-in.
type AuthSession struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// AccountProvider is the hosted identity platform.
type AccountProvider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (uid string, err error)
	SignInWithPassword(ctx context.Context, email, password string) (AuthSession, error)
}

type SignUpInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	DisplayName string `json:"displayName" validate:"omitempty,max=80"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ============================================================
// error translation
// ============================================================

type AuthErrorCode string

const (
	AuthInvalidCredentials AuthErrorCode = "invalid_credentials"
	AuthTooManyAttempts    AuthErrorCode = "too_many_attempts"
	AuthAccountDisabled    AuthErrorCode = "account_disabled"
	AuthEmailInUse         AuthErrorCode = "email_in_use"
	AuthWeakPassword       AuthErrorCode = "weak_password"
	AuthNetwork            AuthErrorCode = "network_error"
	AuthUnknown            AuthErrorCode = "unknown"
)

// AuthError is a provider failure translated into a user-facing message.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Err     error
}

func (e *AuthError) Error() string { return string(e.Code) + ": " + e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

var authMessages = map[AuthErrorCode]string{
	AuthInvalidCredentials: "Invalid email or password.",
	AuthTooManyAttempts:    "Too many failed attempts. Please try again later.",
	AuthAccountDisabled:    "This account has been disabled. Please contact support.",
	AuthEmailInUse:         "An account with this email already exists.",
	AuthWeakPassword:       "Password should be at least 6 characters.",
	AuthNetwork:            "Network error. Please check your connection and try again.",
	AuthUnknown:            "Something went wrong. Please try again.",
}

// authPatterns are matched in order against the lowercased provider error text.
var authPatterns = []struct {
	code    AuthErrorCode
	needles []string
}{
	{AuthInvalidCredentials, []string{"invalid_login_credentials", "invalid_password", "email_not_found", "wrong-password", "user-not-found", "invalid-credential", "invalid_email"}},
	{AuthTooManyAttempts, []string{"too_many_attempts", "too-many-requests"}},
	{AuthAccountDisabled, []string{"user_disabled", "user-disabled"}},
	{AuthEmailInUse, []string{"email_exists", "email-already-exists", "email-already-in-use"}},
	{AuthWeakPassword, []string{"weak_password", "weak-password", "invalid-password"}},
	{AuthNetwork, []string{"network", "connection refused", "no such host", "i/o timeout"}},
}

// TranslateAuthError maps a provider error onto a known code; anything
// unrecognized becomes AuthUnknown.
func TranslateAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	code := AuthUnknown
	var nerr net.Error
	if errors.As(err, &nerr) {
		code = AuthNetwork
	} else {
		text := strings.ToLower(err.Error())
	match:
		for _, p := range authPatterns {
			for _, n := range p.needles {
				if strings.Contains(text, n) {
					code = p.code
					break match
				}
			}
		}
	}
	return &AuthError{Code: code, Message: authMessages[code], Err: err}
}

type AuthUsecase struct {
	provider AccountProvider
}

func NewAuthUsecase(provider AccountProvider) *AuthUsecase {
	return &AuthUsecase{provider: provider}
}

func (uc *AuthUsecase) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validateStruct(in); err != nil {
		return "", err
	}
	uid, err := uc.provider.CreateAccount(ctx, in.Email, in.Password, in.DisplayName)
	if err != nil {
		log.Printf("[auth_uc] sign-up failed email=%s err=%v", in.Email, err)
		return "", TranslateAuthError(err)
	}
	log.Printf("[auth_uc] account created uid=%s", maskUID(uid))
	return uid, nil
}

func (uc *AuthUsecase) SignIn(ctx context.Context, in SignInInput) (AuthSession, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return AuthSession{}, err
	}
	s, err := uc.provider.SignInWithPassword(ctx, in.Email, in.Password)
	if err != nil {
		log.Printf("[auth_uc] sign-in failed email=%s err=%v", in.Email, err)
		return AuthSession{}, TranslateAuthError(err)
	}
	return s, nil
}
