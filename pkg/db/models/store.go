package models

import (
	"time"

	"github.com/google/uuid"
)

// Store represents the tenant boundary a QR code points at.
type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Address   *string   `gorm:"column:address"`
	Users     []User    `gorm:"foreignKey:StoreID"`
	Products  []Product `gorm:"foreignKey:StoreID"`
	Orders    []Order   `gorm:"foreignKey:StoreID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
