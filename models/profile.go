package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleContractor Role = "contractor"
	RoleLandlord   Role = "landlord"
	RoleAdmin      Role = "admin"
)

// Profile mirrors the identity provider's profile row. This service never
// writes it.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
