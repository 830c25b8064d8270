package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alkarmah/storefront/pkg/auth"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

// Snapshot is a read-only view of the session.
type Snapshot struct {
	State enums.SessionState `json:"state"`
	User  *User              `json:"user,omitempty"`
}

// User is the signed-in identity as shown to screens.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool {
	return s.State == enums.SessionStateAuthenticated && s.User != nil
}

// Manager is the explicit session context passed to every component that
// talks to the backend. It moves uninitialized -> loaded -> authenticated or
// anonymous, and back to anonymous on logout or expiry.
type Manager struct {
	mu    sync.RWMutex
	state enums.SessionState
	cred  *Credential
	store Store
	logg  *logger.Logger
	now   func() time.Time
}

// NewManager builds an uninitialized manager over store.
func NewManager(store Store, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Manager{
		state: enums.SessionStateUninitialized,
		store: store,
		logg:  logg,
		now:   time.Now,
	}, nil
}

// Load reads the persisted credential. A missing, unusable or expired
// credential leaves the session anonymous.
func (m *Manager) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = enums.SessionStateLoaded
	cred, err := m.store.Load(ctx)
	if err != nil {
		m.state = enums.SessionStateAnonymous
		m.cred = nil
		m.logg.Error(ctx, "session.load_failed", err)
		return m.snapshotLocked(), pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading session")
	}

	switch {
	case cred == nil || !cred.Valid():
		m.setAnonymousLocked()
	case auth.Expired(cred.Token, m.now()):
		m.setAnonymousLocked()
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logg.Warn(ctx, fmt.Sprintf("session.clear_failed: %v", clearErr))
		}
		m.logg.Info(m.logg.WithUserID(ctx, cred.UserID), "session.expired")
	default:
		m.cred = cred
		m.state = enums.SessionStateAuthenticated
		m.logg.Info(m.logg.WithUserID(ctx, cred.UserID), "session.restored")
	}
	return m.snapshotLocked(), nil
}

// Login persists cred and marks the session authenticated. When the backend
// omits the user id it is read from the token.
func (m *Manager) Login(ctx context.Context, cred Credential) (Snapshot, error) {
	cred.UserID = strings.TrimSpace(cred.UserID)
	cred.Token = strings.TrimSpace(cred.Token)
	if cred.UserID == "" && cred.Token != "" {
		if claims, err := auth.InspectToken(cred.Token); err == nil {
			cred.UserID = claims.Subject()
			if cred.Email == "" {
				cred.Email = claims.Email
			}
		}
	}
	if !cred.Valid() {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "login response carried no user")
	}
	if cred.Token != "" && auth.Expired(cred.Token, m.now()) {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeUnauthenticated, "token already expired")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(ctx, cred); err != nil {
		return m.snapshotLocked(), pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving session")
	}
	m.cred = &cred
	m.state = enums.SessionStateAuthenticated
	m.logg.Info(m.logg.WithUserID(ctx, cred.UserID), "session.login")
	return m.snapshotLocked(), nil
}

// Logout forgets the credential.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing session")
	}
	if m.cred != nil {
		m.logg.Info(m.logg.WithUserID(ctx, m.cred.UserID), "session.logout")
	}
	m.setAnonymousLocked()
	return nil
}

// Invalidate drops the credential after the backend rejected it. The
// in-memory session becomes anonymous even if the store cannot be cleared.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logg.Warn(ctx, fmt.Sprintf("session.invalidate_failed: %v", err))
	}
	if m.cred != nil {
		m.logg.Info(m.logg.WithUserID(ctx, m.cred.UserID), "session.invalidated")
	}
	m.setAnonymousLocked()
}

// Current returns the session as it stands.
func (m *Manager) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// RequireUser returns the credential of the signed-in user or UNAUTHENTICATED.
func (m *Manager) RequireUser() (Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != enums.SessionStateAuthenticated || m.cred == nil {
		return Credential{}, pkgerrors.New(pkgerrors.CodeUnauthenticated, "please sign in to continue")
	}
	if auth.Expired(m.cred.Token, m.now()) {
		return Credential{}, pkgerrors.New(pkgerrors.CodeUnauthenticated, "session expired, please sign in again")
	}
	return *m.cred, nil
}

func (m *Manager) setAnonymousLocked() {
	m.cred = nil
	m.state = enums.SessionStateAnonymous
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state}
	if m.cred != nil {
		snap.User = &User{ID: m.cred.UserID, Name: m.cred.UserName, Email: m.cred.Email}
	}
	return snap
}
