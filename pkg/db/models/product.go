package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable item scoped to one store. Price is stored in the
// smallest currency unit; availability is a binary flag, not a stock count.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	Price       int       `gorm:"column:price;not null"`
	ImageURL    *string   `gorm:"column:image_url"`
	IsAvailable bool      `gorm:"column:is_available;not null;default:true"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
