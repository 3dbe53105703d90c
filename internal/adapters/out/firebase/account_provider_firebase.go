// internal/adapters/out/firebase/account_provider_firebase.go
package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"talentagency/internal/application/usecase"
)

var (
	ErrNoAdminClient = errors.New("account provider: firebase auth client is nil")
	ErrNoWebAPIKey   = errors.New("account provider: FIREBASE_WEB_API_KEY is empty")
)

// userCreator is the part of *auth.Client used for sign-up.
type userCreator interface {
	CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error)
}

// AccountProviderFirebase implements usecase.AccountProvider.
//   - sign-up: Firebase Admin SDK CreateUser
//   - sign-in: Identity Toolkit relyingparty.verifyPassword (web API key)
type AccountProviderFirebase struct {
	admin    userCreator
	toolkit  *identitytoolkit.Service
	toolkErr error
}

var _ usecase.AccountProvider = (*AccountProviderFirebase)(nil)

// NewAccountProviderFirebase builds the provider. opts are appended to the
// Identity Toolkit client options (tests point it at a local endpoint).
func NewAccountProviderFirebase(ctx context.Context, admin *firebaseauth.Client, webAPIKey string, opts ...option.ClientOption) *AccountProviderFirebase {
	p := &AccountProviderFirebase{}
	if admin != nil {
		p.admin = admin
	}

	webAPIKey = strings.TrimSpace(webAPIKey)
	if webAPIKey == "" {
		p.toolkErr = ErrNoWebAPIKey
		return p
	}
	all := append([]option.ClientOption{option.WithAPIKey(webAPIKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, all...)
	if err != nil {
		p.toolkErr = fmt.Errorf("account provider: identitytoolkit init: %w", err)
		return p
	}
	p.toolkit = svc
	return p
}

func (p *AccountProviderFirebase) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	if p == nil || p.admin == nil {
		return "", ErrNoAdminClient
	}

	u := (&firebaseauth.UserToCreate{}).
		Email(email).
		Password(password)
	if n := strings.TrimSpace(displayName); n != "" {
		u = u.DisplayName(n)
	}

	rec, err := p.admin.CreateUser(ctx, u)
	if err != nil {
		// Admin SDK の文言をクライアント SDK と同じコードに寄せる
		switch {
		case firebaseauth.IsEmailAlreadyExists(err):
			return "", fmt.Errorf("email-already-exists: %w", err)
		case strings.Contains(strings.ToLower(err.Error()), "password must be"):
			return "", fmt.Errorf("weak-password: %w", err)
		}
		return "", err
	}
	return rec.UID, nil
}

func (p *AccountProviderFirebase) SignInWithPassword(ctx context.Context, email, password string) (usecase.AuthSession, error) {
	if p == nil || p.toolkit == nil {
		if p != nil && p.toolkErr != nil {
			return usecase.AuthSession{}, p.toolkErr
		}
		return usecase.AuthSession{}, ErrNoWebAPIKey
	}

	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	res, err := p.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return usecase.AuthSession{}, err
	}

	return usecase.AuthSession{
		UID:          res.LocalId,
		Email:        res.Email,
		DisplayName:  res.DisplayName,
		IDToken:      res.IdToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    int(res.ExpiresIn),
	}, nil
}
