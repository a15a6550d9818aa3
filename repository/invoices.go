package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"propertybooking-backend/models"
)

func (s *GormStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.db.WithContext(ctx).Create(inv).Error
}

// LockInvoiceBySession reads the invoice for a checkout session FOR UPDATE.
func (s *GormStore) LockInvoiceBySession(ctx context.Context, sessionID string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "stripe_session_id = ?", sessionID).Error; err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (s *GormStore) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
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

func (s *GormStore) InvoicesForBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Invoice, error) {
	var out []models.Invoice
	if err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
