package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a per-line snapshot. PriceAtOrder captures Product.Price
// at order creation; later catalog changes never alter it.
type OrderItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Product      *Product  `gorm:"foreignKey:ProductID"`
	Quantity     int       `gorm:"column:quantity;not null"`
	PriceAtOrder int       `gorm:"column:price_at_order;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
