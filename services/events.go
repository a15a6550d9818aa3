package services

// Lifecycle event kinds sent to the notification sinks.
const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentExpired   = "payment_expired"
)

type EventDescriptor struct {
	EventType   string            `json:"event_type"`
	Description string            `json:"description"`
	Payload     map[string]string `json:"payload"`
}

// EventCatalog documents every event kind and its payload shape.
func EventCatalog() []EventDescriptor {
	return []EventDescriptor{
		{
			EventType:   EventBookingCreated,
			Description: "Triggered when a new booking is created by a contractor",
			Payload: map[string]string{
				"booking_id":      "string",
				"property_id":     "string",
				"contractor_id":   "string",
				"start_date":      "string",
				"end_date":        "string",
				"property_title":  "string",
				"contractor_name": "string",
			},
		},
		{
			EventType:   EventBookingConfirmed,
			Description: "Triggered when an admin confirms or cancels a booking",
			Payload: map[string]string{
				"booking_id":      "string",
				"property_id":     "string",
				"contractor_id":   "string",
				"status":          "confirmed|cancelled",
				"property_title":  "string",
				"contractor_name": "string",
				"admin_name":      "string",
			},
		},
		{
			EventType:   EventPaymentSucceeded,
			Description: "Triggered when a payment is successfully completed",
			Payload: map[string]string{
				"booking_id":        "string",
				"stripe_session_id": "string",
				"amount_paid":       "number",
				"payment_status":    "string",
			},
		},
		{
			EventType:   EventPaymentExpired,
			Description: "Triggered when a payment session expires",
			Payload: map[string]string{
				"booking_id":        "string",
				"stripe_session_id": "string",
			},
		},
	}
}
