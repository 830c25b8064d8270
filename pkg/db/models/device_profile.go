package models

import "time"

// DeviceProfile is the personal information kept for one device.
type DeviceProfile struct {
	Device      string    `gorm:"column:device;primaryKey"`
	Name        string    `gorm:"column:name;not null;default:''"`
	Mobile      string    `gorm:"column:mobile;not null;default:''"`
	Email       string    `gorm:"column:email;not null;default:''"`
	DateOfBirth string    `gorm:"column:date_of_birth;not null;default:''"`
	ImageURI    string    `gorm:"column:image_uri;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (DeviceProfile) TableName() string {
	return "device_profiles"
}
