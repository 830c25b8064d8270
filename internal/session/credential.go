// Package session owns the device's login state: who is signed in, the
// backend token, and where both are persisted between runs.
package session

import (
	"context"
	"strings"
)

// Credential is the persisted login of the device. Token may be empty when
// the backend issued none.
type Credential struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Token    string `json:"token,omitempty"`
}

// Valid reports whether the credential identifies a user.
func (c Credential) Valid() bool {
	return strings.TrimSpace(c.UserID) != ""
}

// Store persists the device credential. Load returns (nil, nil) when nothing
// is stored.
type Store interface {
	Load(ctx context.Context) (*Credential, error)
	Save(ctx context.Context, cred Credential) error
	Clear(ctx context.Context) error
}
