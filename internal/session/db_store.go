package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alkarmah/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore keeps the credential in the device_credentials table.
type DBStore struct {
	db     *gorm.DB
	device string
	now    func() time.Time
}

// NewDBStore binds a store to one device row.
func NewDBStore(db *gorm.DB, device string) (*DBStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if device == "" {
		return nil, fmt.Errorf("device key required")
	}
	return &DBStore{db: db, device: device, now: time.Now}, nil
}

func (s *DBStore) Load(ctx context.Context) (*Credential, error) {
	var row models.DeviceCredential
	err := s.db.WithContext(ctx).Where("device = ?", s.device).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	return &Credential{
		UserID:   row.UserID,
		UserName: row.UserName,
		Email:    row.Email,
		Token:    row.Token,
	}, nil
}

func (s *DBStore) Save(ctx context.Context, cred Credential) error {
	now := s.now().UTC()
	row := models.DeviceCredential{
		Device:    s.device,
		UserID:    cred.UserID,
		UserName:  cred.UserName,
		Email:     cred.Email,
		Token:     cred.Token,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "user_name", "email", "token", "updated_at"}),
	}).Create(&row).Error
}

func (s *DBStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("device = ?", s.device).Delete(&models.DeviceCredential{}).Error
}
