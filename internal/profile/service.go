package profile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/alkarmah/storefront/internal/session"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// NoChangesMessage is reported when an update matches the stored profile.
const NoChangesMessage = "No changes made. Update at least one field."

type sessionReader interface {
	Current() session.Snapshot
}

// Result describes the outcome of an update.
type Result struct {
	Profile Profile  `json:"profile"`
	Changed []string `json:"changed"`
	Message string   `json:"message"`
}

type Service interface {
	Get(ctx context.Context) (Profile, error)
	Update(ctx context.Context, next Profile) (*Result, error)
}

type service struct {
	mu       sync.Mutex
	store    Store
	sessions sessionReader
	logg     *logger.Logger
}

func NewService(store Store, sessions sessionReader, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("profile store required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session reader required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, sessions: sessions, logg: logg}, nil
}

// Get returns the stored profile. Before the first save it is seeded from the
// signed-in user's name and email.
func (s *service) Get(ctx context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(ctx)
}

// Update replaces the profile when at least one field differs.
func (s *service) Update(ctx context.Context, next Profile) (*Result, error) {
	next = next.normalized()
	if err := validateProfile(next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.currentLocked(ctx)
	if err != nil {
		return nil, err
	}
	changed := Changes(current, next)
	if len(changed) == 0 {
		return &Result{Profile: current, Changed: []string{}, Message: NoChangesMessage}, nil
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.logg.Error(ctx, "profile.save_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not save your profile")
	}

	s.logg.Info(s.logg.WithField(ctx, "changed", changed), "profile.updated")
	return &Result{
		Profile: next,
		Changed: changed,
		Message: strings.Join(changed, ", ") + " updated successfully.",
	}, nil
}

func (s *service) currentLocked(ctx context.Context) (Profile, error) {
	stored, err := s.store.Load(ctx)
	if err != nil {
		s.logg.Error(ctx, "profile.load_failed", err)
		return Profile{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not load your profile")
	}
	if stored != nil {
		return *stored, nil
	}
	var seeded Profile
	if snap := s.sessions.Current(); snap.Authenticated() {
		seeded.Name = snap.User.Name
		seeded.Email = snap.User.Email
	}
	return seeded, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

func validateProfile(p Profile) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := map[string]string{}
	for _, fe := range fieldErrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "must be a valid email"
	case "numeric", "min", "max":
		if fe.Field() == "mobile" {
			return "must be 7 to 15 digits"
		}
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "datetime":
		return "must be a date like 1990-04-21"
	case "uri":
		return "must be a valid link"
	}
	return "is invalid"
}
