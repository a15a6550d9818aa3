package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propertybooking-backend/services"
	"propertybooking-backend/utils"
)

type PaymentBridge interface {
	InitiateCheckout(ctx context.Context, bookingID uuid.UUID) (*services.CheckoutResult, error)
	HandleInboundEvent(ctx context.Context, payload []byte, signature string) error
}

type CreateSessionInput struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
}

type StripeController struct {
	Payments PaymentBridge
	Verbose  bool
}

// CreateSession opens a checkout session for a booking
func (sc *StripeController) CreateSession(c *gin.Context) {
	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, utils.Validation("Validation error", utils.FieldErrors(err, &input)), sc.Verbose)
		return
	}
	bookingID, _ := uuid.Parse(input.BookingID)

	result, err := sc.Payments.InitiateCheckout(c.Request.Context(), bookingID)
	if err != nil {
		utils.RespondWithAppError(c, err, sc.Verbose)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Webhook receives provider events. The body must reach the verifier
// byte-for-byte, so it is read raw and never bound.
func (sc *StripeController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Unable to read request body")
		return
	}

	if err := sc.Payments.HandleInboundEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.RespondWithAppError(c, err, sc.Verbose)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
