package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

// Invoice records one checkout attempt for a booking.
type Invoice struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"booking_id"`
	StripeSessionID  string          `gorm:"uniqueIndex;not null" json:"stripe_session_id"`
	StripePaymentURL string          `gorm:"type:text" json:"stripe_payment_url"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status           InvoiceStatus   `gorm:"type:varchar(20);not null;default:'unpaid'" json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
