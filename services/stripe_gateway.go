package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"propertybooking-backend/utils"
)

const (
	stripeCurrency         = "usd"
	stripeBookingMetaKey   = "bookingId"
	stripeSessionCompleted = "checkout.session.completed"
	stripeSessionExpired   = "checkout.session.expired"
)

// StripeGateway creates Stripe Checkout sessions and verifies Stripe webhook
// signatures.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	unitAmount := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(stripeCurrency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Property Booking"),
						Description: stripe.String("Booking ID: " + req.BookingID.String()),
					},
					UnitAmount: stripe.Int64(unitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(stripeBookingMetaKey, req.BookingID.String())

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (PaymentEvent, error) {
	if g.webhookSecret == "" {
		return PaymentEvent{}, utils.Upstream("Missing STRIPE_WEBHOOK_SECRET environment variable", nil)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return PaymentEvent{}, err
	}

	out := PaymentEvent{ID: event.ID, Type: string(event.Type), Kind: OtherEvent}
	switch string(event.Type) {
	case stripeSessionCompleted:
		out.Kind = CheckoutCompleted
	case stripeSessionExpired:
		out.Kind = CheckoutExpired
	default:
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return PaymentEvent{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = sess.ID
	out.BookingID = sess.Metadata[stripeBookingMetaKey]
	out.AmountTotal = sess.AmountTotal
	out.PaymentStatus = string(sess.PaymentStatus)
	return out, nil
}

// DisabledGateway stands in for the provider when no secret key is
// configured.
type DisabledGateway struct{}

func (DisabledGateway) CreateCheckoutSession(context.Context, CheckoutRequest) (CheckoutSession, error) {
	return CheckoutSession{}, utils.Upstream("Stripe is not configured. Please add STRIPE_SECRET_KEY to environment variables.", nil)
}

func (DisabledGateway) ParseEvent([]byte, string) (PaymentEvent, error) {
	return PaymentEvent{}, utils.Upstream("Stripe is not configured. Please add STRIPE_SECRET_KEY to environment variables.", nil)
}
