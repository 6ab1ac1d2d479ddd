package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigadev/qr-order-backend/pkg/enums"
	"github.com/gigadev/qr-order-backend/pkg/types"
)

// Order is one checkout attempt. OrderID is the externally visible
// correlation key shared with the payment gateway; Amount is frozen at
// creation and never recomputed from catalog prices.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        string            `gorm:"column:order_id;not null;uniqueIndex"`
	OrderName      *string           `gorm:"column:order_name"`
	PaymentKey     *string           `gorm:"column:payment_key"`
	Amount         int               `gorm:"column:amount;not null"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	StoreID        uuid.UUID         `gorm:"column:store_id;type:uuid;not null"`
	ApprovedAt     *time.Time        `gorm:"column:approved_at"`
	Method         *string           `gorm:"column:method"`
	TransactionID  *string           `gorm:"column:transaction_id"`
	ReceiptURL     *string           `gorm:"column:receipt_url"`
	FailReason     *string           `gorm:"column:fail_reason"`
	PaymentDetails types.JSONMap     `gorm:"column:payment_details;type:jsonb"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
