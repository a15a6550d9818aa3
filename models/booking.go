package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingPaid      BookingStatus = "paid"
)

// IsTerminal reports whether no further transition is defined from s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingPaid || s == BookingCancelled
}

type Booking struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID   uuid.UUID     `gorm:"type:uuid;index;not null" json:"property_id"`
	ContractorID uuid.UUID     `gorm:"type:uuid;index;not null" json:"contractor_id"`
	StartDate    Date          `gorm:"type:date;not null" json:"start_date"`
	EndDate      Date          `gorm:"type:date;not null" json:"end_date"`
	Status       BookingStatus `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Contractor *Profile  `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`
	Invoices   []Invoice `gorm:"foreignKey:BookingID" json:"invoice,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
