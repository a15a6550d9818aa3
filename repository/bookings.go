package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propertybooking-backend/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// withDetails preloads the joins every booking response carries.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Property").
		Preload("Contractor").
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := withDetails(s.db.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// LockBooking reads the booking row FOR UPDATE. Only meaningful inside
// Transaction.
func (s *GormStore) LockBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBookings returns one page of bookings, newest first, and the total
// number of rows matching the filter.
func (s *GormStore) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	if f.Page < 1 {
		f.Page = 1
	}

	scoped := func() *gorm.DB {
		qb := s.db.WithContext(ctx).Model(&models.Booking{})
		if f.Status != "" {
			qb = qb.Where("status = ?", f.Status)
		}
		return qb
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Booking
	if err := withDetails(scoped()).
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *GormStore) RecentBookings(ctx context.Context, n int) ([]models.Booking, error) {
	var out []models.Booking
	if err := s.db.WithContext(ctx).
		Preload("Property").
		Preload("Contractor").
		Order("created_at DESC").
		Limit(n).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
