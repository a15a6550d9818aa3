// services/booking_service.go
package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"propertybooking-backend/models"
	"propertybooking-backend/repository"
	"propertybooking-backend/utils"
)

const recentBookingsOnDashboard = 5

type CreateBookingInput struct {
	PropertyID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
}

// PaymentCompletion is a verified report that a checkout session was paid.
type PaymentCompletion struct {
	SessionID     string
	BookingID     uuid.UUID
	AmountPaid    float64
	PaymentStatus string
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type BookingPage struct {
	Bookings   []models.Booking `json:"bookings"`
	Pagination Pagination       `json:"pagination"`
}

type DashboardOverview struct {
	Stats          repository.DashboardStats `json:"stats"`
	RecentBookings []models.Booking          `json:"recentBookings"`
}

// BookingService owns booking status transitions:
//
//	pending   -> confirmed | cancelled   (admin)
//	pending   -> paid                    (payment)
//	confirmed -> paid                    (payment)
//
// paid and cancelled are terminal for admin decisions.
type BookingService struct {
	store    repository.Store
	notifier Notifier
	log      *logrus.Logger
}

func NewBookingService(store repository.Store, notifier Notifier, log *logrus.Logger) *BookingService {
	return &BookingService{store: store, notifier: notifier, log: log}
}

func (s *BookingService) Create(ctx context.Context, contractor Identity, in CreateBookingInput) (*models.Booking, error) {
	if !in.EndDate.After(in.StartDate) {
		return nil, utils.InvalidRange("end_date")
	}

	property, err := s.store.GetProperty(ctx, in.PropertyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("Property not found")
	}
	if err != nil {
		return nil, utils.Internal("Failed to load property", err)
	}

	booking := &models.Booking{
		PropertyID:   property.ID,
		ContractorID: contractor.ID,
		StartDate:    models.NewDate(in.StartDate),
		EndDate:      models.NewDate(in.EndDate),
		Status:       models.BookingPending,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, utils.Internal("Failed to create booking", err)
	}

	created, err := s.store.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, utils.Internal("Failed to load booking", err)
	}

	s.notifier.Emit(ctx, EventBookingCreated, map[string]any{
		"booking_id":      created.ID.String(),
		"property_id":     created.PropertyID.String(),
		"contractor_id":   created.ContractorID.String(),
		"start_date":      created.StartDate.String(),
		"end_date":        created.EndDate.String(),
		"property_title":  property.Title,
		"contractor_name": contractor.FullName,
	})
	return created, nil
}

// Confirm applies an admin decision to a pending booking.
func (s *BookingService) Confirm(ctx context.Context, admin Identity, id uuid.UUID, decision models.BookingStatus) (*models.Booking, error) {
	if decision != models.BookingConfirmed && decision != models.BookingCancelled {
		return nil, utils.Validation("Validation error", map[string]string{"status": "Must be one of: confirmed, cancelled"})
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		current, err := tx.LockBooking(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFound("Booking not found")
		}
		if err != nil {
			return utils.Internal("Failed to load booking", err)
		}
		if current.Status != models.BookingPending {
			return utils.InvalidTransition(string(current.Status), string(decision))
		}
		if err := tx.UpdateBookingStatus(ctx, id, decision); err != nil {
			return utils.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load booking", err)
	}

	s.notifier.Emit(ctx, EventBookingConfirmed, map[string]any{
		"booking_id":      booking.ID.String(),
		"property_id":     booking.PropertyID.String(),
		"contractor_id":   booking.ContractorID.String(),
		"status":          string(decision),
		"property_title":  propertyTitle(booking),
		"contractor_name": contractorName(booking),
		"admin_name":      admin.FullName,
	})
	return booking, nil
}

// MarkPaid settles the invoice for a checkout session and the booking it
// belongs to in one transaction. Replaying the same completion is a no-op
// that reports success and emits nothing.
func (s *BookingService) MarkPaid(ctx context.Context, p PaymentCompletion) error {
	settled := false
	var bookingID uuid.UUID

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		invoice, err := tx.LockInvoiceBySession(ctx, p.SessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFound("Invoice not found")
		}
		if err != nil {
			return utils.Internal("Failed to load invoice", err)
		}
		if p.BookingID != uuid.Nil && p.BookingID != invoice.BookingID {
			return utils.InvalidEvent("Checkout session does not belong to booking")
		}
		bookingID = invoice.BookingID

		booking, err := tx.LockBooking(ctx, invoice.BookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFound("Booking not found")
		}
		if err != nil {
			return utils.Internal("Failed to load booking", err)
		}

		if invoice.Status == models.InvoicePaid && booking.Status == models.BookingPaid {
			return nil
		}

		if invoice.Status != models.InvoicePaid {
			if err := tx.UpdateInvoiceStatus(ctx, invoice.ID, models.InvoicePaid); err != nil {
				return utils.Internal("Failed to update invoice", err)
			}
		}
		if booking.Status != models.BookingPaid {
			if booking.Status == models.BookingCancelled {
				s.log.WithFields(logrus.Fields{
					"booking_id": booking.ID,
					"session_id": p.SessionID,
				}).Warn("payment captured for cancelled booking, marking paid")
			}
			if err := tx.UpdateBookingStatus(ctx, booking.ID, models.BookingPaid); err != nil {
				return utils.Internal("Failed to update booking", err)
			}
		}
		settled = true
		return nil
	})
	if err != nil {
		return err
	}

	entry := s.log.WithFields(logrus.Fields{"booking_id": bookingID, "session_id": p.SessionID})
	if !settled {
		entry.Info("payment already recorded, ignoring redelivery")
		return nil
	}
	entry.Info("payment succeeded")

	s.notifier.Emit(ctx, EventPaymentSucceeded, map[string]any{
		"booking_id":        bookingID.String(),
		"stripe_session_id": p.SessionID,
		"amount_paid":       p.AmountPaid,
		"payment_status":    p.PaymentStatus,
	})
	return nil
}

// MarkExpired reports an abandoned checkout. The booking stays as it is so a
// new session can be started later.
func (s *BookingService) MarkExpired(ctx context.Context, sessionID string, bookingID uuid.UUID) error {
	s.log.WithFields(logrus.Fields{"booking_id": bookingID, "session_id": sessionID}).
		Info("payment session expired")

	s.notifier.Emit(ctx, EventPaymentExpired, map[string]any{
		"booking_id":        bookingID.String(),
		"stripe_session_id": sessionID,
	})
	return nil
}

// Get returns a booking visible to requester: admins, the booking's
// contractor and the property's owner.
func (s *BookingService) Get(ctx context.Context, requester Identity, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("Booking not found")
	}
	if err != nil {
		return nil, utils.Internal("Failed to load booking", err)
	}

	if requester.Role != models.RoleAdmin &&
		booking.ContractorID != requester.ID &&
		(booking.Property == nil || booking.Property.OwnerID != requester.ID) {
		return nil, utils.Forbidden("Access denied")
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, f repository.BookingFilter) (*BookingPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	bookings, total, err := s.store.ListBookings(ctx, f)
	if err != nil {
		return nil, utils.Internal("Failed to fetch bookings", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	return &BookingPage{
		Bookings: bookings,
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(f.Limit))),
		},
	}, nil
}

func (s *BookingService) Dashboard(ctx context.Context) (*DashboardOverview, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, utils.Internal("Failed to count records", err)
	}
	recent, err := s.store.RecentBookings(ctx, recentBookingsOnDashboard)
	if err != nil {
		return nil, utils.Internal("Failed to fetch recent bookings", err)
	}
	if recent == nil {
		recent = []models.Booking{}
	}
	return &DashboardOverview{Stats: stats, RecentBookings: recent}, nil
}

// BookingAmount is the nightly price times the number of calendar days
// between start and end, rounded up.
func BookingAmount(price decimal.Decimal, start, end time.Time) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(utils.DaysBetween(start, end))))
}

func propertyTitle(b *models.Booking) string {
	if b.Property == nil {
		return ""
	}
	return b.Property.Title
}

func contractorName(b *models.Booking) string {
	if b.Contractor == nil {
		return ""
	}
	return b.Contractor.FullName
}
