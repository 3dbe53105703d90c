// internal/domain/auth/identity.go
package auth

import "strings"

// Identity is the verified caller. It is resolved from an ID token at the edge
// and passed explicitly to every usecase.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Anonymous is the zero identity.
var Anonymous = Identity{}

func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.UID) != ""
}

// Name prefers the display name, then the email local part.
func (i Identity) Name() string {
	if n := strings.TrimSpace(i.DisplayName); n != "" {
		return n
	}
	if at := strings.Index(i.Email, "@"); at > 0 {
		return i.Email[:at]
	}
	return strings.TrimSpace(i.Email)
}
