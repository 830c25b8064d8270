package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alkarmah/storefront/pkg/db/models"
	"gorm.io/gorm"
)

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DBStore keeps the profile in the device_profiles table.
type DBStore struct {
	db     txRunner
	device string
	now    func() time.Time
}

func NewDBStore(db txRunner, device string) (*DBStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if device == "" {
		return nil, fmt.Errorf("device key required")
	}
	return &DBStore{db: db, device: device, now: time.Now}, nil
}

func (s *DBStore) Load(ctx context.Context) (*Profile, error) {
	var row models.DeviceProfile
	err := s.db.DB().WithContext(ctx).Where("device = ?", s.device).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return &Profile{
		Name:        row.Name,
		Mobile:      row.Mobile,
		Email:       row.Email,
		DateOfBirth: row.DateOfBirth,
		ImageURI:    row.ImageURI,
	}, nil
}

// Save creates the row on first use and otherwise updates it in place,
// keeping created_at.
func (s *DBStore) Save(ctx context.Context, p Profile) error {
	now := s.now().UTC()
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var row models.DeviceProfile
		err := tx.Where("device = ?", s.device).First(&row).Error
		created := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !created {
			return fmt.Errorf("reading profile: %w", err)
		}
		if created {
			row = models.DeviceProfile{Device: s.device, CreatedAt: now}
		}
		row.Name = p.Name
		row.Mobile = p.Mobile
		row.Email = p.Email
		row.DateOfBirth = p.DateOfBirth
		row.ImageURI = p.ImageURI
		row.UpdatedAt = now
		write := tx.Save
		if created {
			write = tx.Create
		}
		if err := write(&row).Error; err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		return nil
	})
}
