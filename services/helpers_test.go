package services

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"propertybooking-backend/models"
	"propertybooking-backend/repository"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDB(t *testing.T) (*gorm.DB, *repository.GormStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store := repository.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db, store
}

type world struct {
	admin      Identity
	contractor Identity
	landlord   Identity
	stranger   Identity
	property   *models.Property
}

func seedWorld(t *testing.T, db *gorm.DB, price int64) world {
	t.Helper()

	profile := func(name string, role models.Role) Identity {
		p := &models.Profile{ID: uuid.New(), FullName: name, Role: role}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("Failed to seed profile: %v", err)
		}
		return Identity{ID: p.ID, Role: p.Role, FullName: p.FullName}
	}

	w := world{
		admin:      profile("Ada Admin", models.RoleAdmin),
		contractor: profile("Carl Contractor", models.RoleContractor),
		landlord:   profile("Lena Landlord", models.RoleLandlord),
		stranger:   profile("Sam Stranger", models.RoleContractor),
	}
	w.property = &models.Property{
		OwnerID: w.landlord.ID,
		Title:   "Harbour Flat",
		Address: "1 Quay St",
		Price:   decimal.NewFromInt(price),
	}
	if err := db.Create(w.property).Error; err != nil {
		t.Fatalf("Failed to seed property: %v", err)
	}
	return w
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

type emitted struct {
	EventType string
	Data      map[string]any
}

// recordingNotifier captures events synchronously.
type recordingNotifier struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingNotifier) Emit(_ context.Context, eventType string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{EventType: eventType, Data: data})
}

func (r *recordingNotifier) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

// last returns the payload of the most recent event of eventType.
func (r *recordingNotifier) last(eventType string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].EventType == eventType {
			return r.events[i].Data
		}
	}
	return nil
}

func (r *recordingNotifier) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// fakeGateway implements CheckoutGateway for testing
type fakeGateway struct {
	CreateCheckoutSessionFunc func(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	ParseEventFunc            func(payload []byte, signature string) (PaymentEvent, error)
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if f.CreateCheckoutSessionFunc != nil {
		return f.CreateCheckoutSessionFunc(ctx, req)
	}
	return CheckoutSession{ID: "cs_test_default", URL: "https://checkout.example/cs_test_default"}, nil
}

func (f *fakeGateway) ParseEvent(payload []byte, signature string) (PaymentEvent, error) {
	if f.ParseEventFunc != nil {
		return f.ParseEventFunc(payload, signature)
	}
	return PaymentEvent{Kind: OtherEvent}, nil
}

// assertPaidInvariant checks that a booking is paid exactly when one of its
// invoices is paid.
func assertPaidInvariant(t *testing.T, store repository.Store, bookingID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	b, err := store.GetBooking(ctx, bookingID)
	if err != nil {
		t.Fatalf("GetBooking() error = %v", err)
	}
	invoices, err := store.InvoicesForBooking(ctx, bookingID)
	if err != nil {
		t.Fatalf("InvoicesForBooking() error = %v", err)
	}
	anyPaid := false
	for _, inv := range invoices {
		if inv.Status == models.InvoicePaid {
			anyPaid = true
		}
	}
	if (b.Status == models.BookingPaid) != anyPaid {
		t.Errorf("invariant broken: booking %s, paid invoice present = %v", b.Status, anyPaid)
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
