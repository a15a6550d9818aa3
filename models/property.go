package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Property struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title       string          `gorm:"not null" json:"title"`
	Description *string         `json:"description"`
	Address     string          `gorm:"not null" json:"address"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Owner *Profile `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
