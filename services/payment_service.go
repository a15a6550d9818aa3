// services/payment_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"propertybooking-backend/models"
	"propertybooking-backend/repository"
	"propertybooking-backend/utils"
)

type PaymentEventKind string

const (
	CheckoutCompleted PaymentEventKind = "checkout_completed"
	CheckoutExpired   PaymentEventKind = "checkout_expired"
	OtherEvent        PaymentEventKind = "other"
)

type CheckoutRequest struct {
	BookingID  uuid.UUID
	Amount     decimal.Decimal
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEvent is a verified inbound provider event reduced to the fields
// the booking flow needs.
type PaymentEvent struct {
	ID            string
	Type          string
	Kind          PaymentEventKind
	SessionID     string
	BookingID     string
	AmountTotal   int64
	PaymentStatus string
}

// CheckoutGateway is the hosted checkout provider.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	// ParseEvent verifies signature over the raw payload before decoding it.
	ParseEvent(payload []byte, signature string) (PaymentEvent, error)
}

// PaymentSettler applies verified payment outcomes to bookings.
type PaymentSettler interface {
	MarkPaid(ctx context.Context, p PaymentCompletion) error
	MarkExpired(ctx context.Context, sessionID string, bookingID uuid.UUID) error
}

type CheckoutResult struct {
	SessionID  string          `json:"session_id"`
	PaymentURL string          `json:"payment_url"`
	Invoice    *models.Invoice `json:"invoice"`
}

type PaymentService struct {
	store       repository.Store
	gateway     CheckoutGateway
	settler     PaymentSettler
	frontendURL string
	log         *logrus.Logger
}

func NewPaymentService(store repository.Store, gateway CheckoutGateway, settler PaymentSettler, frontendURL string, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		store:       store,
		gateway:     gateway,
		settler:     settler,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// InitiateCheckout opens a hosted checkout session for a booking and records
// an unpaid invoice for it.
func (s *PaymentService) InitiateCheckout(ctx context.Context, bookingID uuid.UUID) (*CheckoutResult, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("Booking not found")
	}
	if err != nil {
		return nil, utils.Internal("Failed to load booking", err)
	}
	if booking.Status.IsTerminal() {
		return nil, utils.InvalidTransition(string(booking.Status), string(models.BookingPaid))
	}

	property := booking.Property
	if property == nil {
		property, err = s.store.GetProperty(ctx, booking.PropertyID)
		if err != nil {
			return nil, utils.Internal("Failed to load property", err)
		}
	}

	amount := BookingAmount(property.Price, booking.StartDate.Time, booking.EndDate.Time)

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		BookingID:  booking.ID,
		Amount:     amount,
		SuccessURL: s.frontendURL + "/contractor?payment=success",
		CancelURL:  s.frontendURL + "/contractor?payment=cancelled",
	})
	if err != nil {
		if _, ok := utils.AsAppError(err); ok {
			return nil, err
		}
		return nil, utils.Upstream("Payment provider unavailable", err)
	}

	invoice := &models.Invoice{
		BookingID:        booking.ID,
		StripeSessionID:  session.ID,
		StripePaymentURL: session.URL,
		Amount:           amount,
		Status:           models.InvoiceUnpaid,
	}
	// The booking may have been cancelled while the provider call was in
	// flight. Re-check under the row lock so no unpaid invoice lands on a
	// terminal booking.
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		current, err := tx.LockBooking(ctx, booking.ID)
		if err != nil {
			return utils.Internal("Failed to load booking", err)
		}
		if current.Status.IsTerminal() {
			return utils.InvalidTransition(string(current.Status), string(models.BookingPaid))
		}
		if err := tx.CreateInvoice(ctx, invoice); err != nil {
			return utils.Internal("Failed to create invoice", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidTransition) {
			s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "session_id": session.ID}).
				Warn("booking closed during checkout, session abandoned")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"session_id": session.ID,
		"amount":     amount.String(),
	}).Info("checkout session created")

	return &CheckoutResult{SessionID: session.ID, PaymentURL: session.URL, Invoice: invoice}, nil
}

// HandleInboundEvent verifies and applies one provider webhook delivery. Any
// verification failure rejects the whole event before anything is written.
func (s *PaymentService) HandleInboundEvent(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return &utils.AppError{Kind: utils.KindSignatureInvalid, Message: "Missing stripe signature"}
	}

	ev, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return &utils.AppError{Kind: utils.KindSignatureInvalid, Message: utils.ErrSignatureInvalid.Message, Err: err}
	}

	entry := s.log.WithFields(logrus.Fields{"event_id": ev.ID, "event_type": ev.Type})

	switch ev.Kind {
	case CheckoutCompleted:
		if ev.BookingID == "" {
			entry.Error("missing bookingId in session metadata")
			return utils.InvalidEvent("Missing booking ID")
		}
		bookingID, err := uuid.Parse(ev.BookingID)
		if err != nil {
			return utils.InvalidEvent("Invalid booking ID")
		}
		return s.settler.MarkPaid(ctx, PaymentCompletion{
			SessionID:     ev.SessionID,
			BookingID:     bookingID,
			AmountPaid:    float64(ev.AmountTotal) / 100,
			PaymentStatus: ev.PaymentStatus,
		})

	case CheckoutExpired:
		if ev.BookingID == "" {
			entry.Warn("expired session without bookingId metadata")
			return nil
		}
		bookingID, err := uuid.Parse(ev.BookingID)
		if err != nil {
			return utils.InvalidEvent("Invalid booking ID")
		}
		return s.settler.MarkExpired(ctx, ev.SessionID, bookingID)

	default:
		entry.Info("unhandled event type")
		return nil
	}
}
