// Package repository is the typed persistence layer over the profiles,
// properties, bookings and invoices tables.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propertybooking-backend/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type BookingFilter struct {
	Status models.BookingStatus
	Page   int
	Limit  int
}

type DashboardStats struct {
	TotalBookings   int64 `json:"totalBookings"`
	TotalProperties int64 `json:"totalProperties"`
	TotalUsers      int64 `json:"totalUsers"`
	PendingBookings int64 `json:"pendingBookings"`
	PaidBookings    int64 `json:"paidBookings"`
}

// Store is the set of queries the services run. Implementations must make
// every method inside Transaction share one database transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	LockBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error
	ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error)
	RecentBookings(ctx context.Context, n int) ([]models.Booking, error)

	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	LockInvoiceBySession(ctx context.Context, sessionID string) (*models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error
	InvoicesForBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Invoice, error)

	Stats(ctx context.Context) (DashboardStats, error)
}

// GormStore implements Store on a gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the tables when they are missing. Production schemas are
// owned by the managed database; this is used for local runs and tests.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.Profile{},
		&models.Property{},
		&models.Booking{},
		&models.Invoice{},
	)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) Stats(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats
	db := s.db.WithContext(ctx)

	counts := []struct {
		model any
		where map[string]any
		dst   *int64
	}{
		{&models.Booking{}, nil, &st.TotalBookings},
		{&models.Property{}, nil, &st.TotalProperties},
		{&models.Profile{}, nil, &st.TotalUsers},
		{&models.Booking{}, map[string]any{"status": models.BookingPending}, &st.PendingBookings},
		{&models.Booking{}, map[string]any{"status": models.BookingPaid}, &st.PaidBookings},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return DashboardStats{}, err
		}
	}
	return st, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
