package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSink texts a one-line summary of each event to an operations number.
type SMSSink struct {
	client *twilio.RestClient
	from   string
	to     string
}

func NewSMSSink(accountSid, authToken, from, to string) *SMSSink {
	return &SMSSink{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: from,
		to:   to,
	}
}

func (s *SMSSink) Name() string { return "twilio_sms" }

func (s *SMSSink) Deliver(ctx context.Context, ev Event) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(SummarizeEvent(ev))

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if resp.Sid == nil {
		return fmt.Errorf("send sms: no message sid returned")
	}
	return nil
}

// SummarizeEvent renders an event as a short human readable line.
func SummarizeEvent(ev Event) string {
	id, _ := ev.Data["booking_id"].(string)
	switch ev.EventType {
	case EventBookingCreated:
		return fmt.Sprintf("New booking %s for %v by %v (%v to %v)",
			id, ev.Data["property_title"], ev.Data["contractor_name"], ev.Data["start_date"], ev.Data["end_date"])
	case EventBookingConfirmed:
		return fmt.Sprintf("Booking %s %v by %v", id, ev.Data["status"], ev.Data["admin_name"])
	case EventPaymentSucceeded:
		return fmt.Sprintf("Payment of %v received for booking %s", ev.Data["amount_paid"], id)
	case EventPaymentExpired:
		return fmt.Sprintf("Checkout expired for booking %s", id)
	default:
		return fmt.Sprintf("%s: booking %s", ev.EventType, id)
	}
}
