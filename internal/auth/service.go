// Package auth runs the login, signup and change password forms against the
// backend and records the outcome in the session.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/session"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

type accountsAPI interface {
	Login(ctx context.Context, in backend.LoginRequest) (*backend.LoginResponse, error)
	Signup(ctx context.Context, in backend.SignupRequest) (*backend.Message, error)
	ChangePassword(ctx context.Context, token string, in backend.ChangePasswordRequest) (*backend.Message, error)
}

type sessionManager interface {
	Login(ctx context.Context, cred session.Credential) (session.Snapshot, error)
	Logout(ctx context.Context) error
	Current() session.Snapshot
	RequireUser() (session.Credential, error)
	Invalidate(ctx context.Context)
}

// Service defines the account actions.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Result, error)
	Signup(ctx context.Context, req SignupRequest) (*Result, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) (*Result, error)
	Logout(ctx context.Context) (*Result, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Accounts accountsAPI
	Sessions sessionManager
	Logger   *logger.Logger
}

type service struct {
	accounts accountsAPI
	sessions sessionManager
	logg     *logger.Logger
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts api is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		accounts: params.Accounts,
		sessions: params.Sessions,
		logg:     logg,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateForm(req); err != nil {
		return nil, err
	}
	resp, err := s.accounts.Login(ctx, backend.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}

	cred := session.Credential{
		UserID:   resp.User.ID,
		UserName: resp.User.Name,
		Email:    resp.User.Email,
	}
	if cred.Email == "" {
		cred.Email = req.Email
	}
	if resp.Token != nil {
		cred.Token = *resp.Token
	}
	snap, err := s.sessions.Login(ctx, cred)
	if err != nil {
		return nil, err
	}
	return &Result{Message: "Welcome back, " + displayName(snap), Session: snap}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*Result, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateForm(req); err != nil {
		return nil, err
	}
	resp, err := s.accounts.Signup(ctx, backend.SignupRequest{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}
	message := "User registered successfully! Please login."
	if resp != nil && resp.Message != "" {
		message = resp.Message
	}
	s.logg.Info(s.logg.WithField(ctx, "email", req.Email), "auth.signed_up")
	return &Result{Message: message, Session: s.sessions.Current()}, nil
}

func (s *service) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*Result, error) {
	if err := validateForm(req); err != nil {
		return nil, err
	}
	cred, err := s.sessions.RequireUser()
	if err != nil {
		return nil, err
	}
	if cred.Email == "" || cred.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "user not authenticated, please login again")
	}

	resp, err := s.accounts.ChangePassword(ctx, cred.Token, backend.ChangePasswordRequest{
		Email:       cred.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
			s.sessions.Invalidate(ctx)
		}
		return nil, err
	}
	message := "Password updated successfully!"
	if resp != nil && resp.Message != "" {
		message = resp.Message
	}
	s.logg.Info(s.logg.WithUserID(ctx, cred.UserID), "auth.password_changed")
	return &Result{Message: message, Session: s.sessions.Current()}, nil
}

func (s *service) Logout(ctx context.Context) (*Result, error) {
	if err := s.sessions.Logout(ctx); err != nil {
		return nil, err
	}
	return &Result{Message: "Signed out", Session: s.sessions.Current()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func displayName(snap session.Snapshot) string {
	if snap.User == nil {
		return ""
	}
	if snap.User.Name != "" {
		return snap.User.Name
	}
	return snap.User.Email
}
