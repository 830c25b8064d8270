package models

import "time"

// DeviceCredential is the persisted login of one device: the backend-issued
// token plus the user fields the screens display.
type DeviceCredential struct {
	Device    string    `gorm:"column:device;primaryKey"`
	UserID    string    `gorm:"column:user_id;not null"`
	UserName  string    `gorm:"column:user_name;not null;default:''"`
	Email     string    `gorm:"column:email;not null;default:''"`
	Token     string    `gorm:"column:token;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName binds the model to its goose-managed table.
func (DeviceCredential) TableName() string {
	return "device_credentials"
}
