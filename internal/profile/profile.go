// Package profile keeps the shopper's personal information on the device and
// reports which fields an update changed.
package profile

import (
	"context"
	"strings"
	"sync"
)

// Profile is the personal information shown on the profile screen.
type Profile struct {
	Name        string `json:"name" validate:"max=120"`
	Mobile      string `json:"mobile" validate:"omitempty,numeric,min=7,max=15"`
	Email       string `json:"email" validate:"omitempty,email"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	ImageURI    string `json:"image_uri" validate:"omitempty,uri"`
}

func (p Profile) normalized() Profile {
	return Profile{
		Name:        strings.TrimSpace(p.Name),
		Mobile:      strings.TrimSpace(p.Mobile),
		Email:       strings.ToLower(strings.TrimSpace(p.Email)),
		DateOfBirth: strings.TrimSpace(p.DateOfBirth),
		ImageURI:    strings.TrimSpace(p.ImageURI),
	}
}

// Changes lists the labels of the fields that differ between old and next,
// in display order.
func Changes(old, next Profile) []string {
	var changed []string
	if old.Name != next.Name {
		changed = append(changed, "Name")
	}
	if old.Mobile != next.Mobile {
		changed = append(changed, "Mobile")
	}
	if old.Email != next.Email {
		changed = append(changed, "Email")
	}
	if old.DateOfBirth != next.DateOfBirth {
		changed = append(changed, "Date of Birth")
	}
	if old.ImageURI != next.ImageURI {
		changed = append(changed, "Profile Photo")
	}
	return changed
}

// Store persists the device profile. Load returns (nil, nil) when nothing is
// stored.
type Store interface {
	Load(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p Profile) error
}

// MemoryStore keeps the profile for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	profile *Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	return &p, nil
}

func (s *MemoryStore) Save(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	return nil
}
