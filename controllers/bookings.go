package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propertybooking-backend/middlewares"
	"propertybooking-backend/models"
	"propertybooking-backend/services"
	"propertybooking-backend/utils"
)

type BookingLifecycle interface {
	Create(ctx context.Context, contractor services.Identity, in services.CreateBookingInput) (*models.Booking, error)
	Get(ctx context.Context, requester services.Identity, id uuid.UUID) (*models.Booking, error)
}

// CreateBookingInput defines the expected JSON structure for requesting a booking
type CreateBookingInput struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	StartDate  string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

type BookingController struct {
	Bookings BookingLifecycle
	Verbose  bool
}

// GetBooking returns one booking to an admin, its contractor or the
// property's landlord.
func (bc *BookingController) GetBooking(c *gin.Context) {
	caller, ok := middlewares.CurrentIdentity(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// not a uuid, so it cannot name a booking
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	booking, err := bc.Bookings.Get(c.Request.Context(), caller, id)
	if err != nil {
		utils.RespondWithAppError(c, err, bc.Verbose)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CreateBooking requests a booking for the calling contractor
func (bc *BookingController) CreateBooking(c *gin.Context) {
	caller, ok := middlewares.CurrentIdentity(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, utils.Validation("Validation error", utils.FieldErrors(err, &input)), bc.Verbose)
		return
	}

	// binding already checked these formats
	propertyID, _ := uuid.Parse(input.PropertyID)
	start, _ := utils.ParseDate(input.StartDate)
	end, _ := utils.ParseDate(input.EndDate)

	booking, err := bc.Bookings.Create(c.Request.Context(), caller, services.CreateBookingInput{
		PropertyID: propertyID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		utils.RespondWithAppError(c, err, bc.Verbose)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}
