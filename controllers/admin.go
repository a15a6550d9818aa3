package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propertybooking-backend/middlewares"
	"propertybooking-backend/models"
	"propertybooking-backend/repository"
	"propertybooking-backend/services"
	"propertybooking-backend/utils"
)

type AdminBookings interface {
	List(ctx context.Context, f repository.BookingFilter) (*services.BookingPage, error)
	Confirm(ctx context.Context, admin services.Identity, id uuid.UUID, decision models.BookingStatus) (*models.Booking, error)
	Dashboard(ctx context.Context) (*services.DashboardOverview, error)
}

type ConfirmBookingInput struct {
	Status string `json:"status" binding:"required,oneof=confirmed cancelled"`
}

type AdminController struct {
	Bookings AdminBookings
	Verbose  bool
}

// ListBookings pages through every booking, newest first
func (ac *AdminController) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := ac.Bookings.List(c.Request.Context(), repository.BookingFilter{
		Status: models.BookingStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		utils.RespondWithAppError(c, err, ac.Verbose)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConfirmBooking records the admin's confirm or cancel decision
func (ac *AdminController) ConfirmBooking(c *gin.Context) {
	admin, ok := middlewares.CurrentIdentity(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	var input ConfirmBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, utils.Validation("Validation error", utils.FieldErrors(err, &input)), ac.Verbose)
		return
	}

	booking, err := ac.Bookings.Confirm(c.Request.Context(), admin, id, models.BookingStatus(input.Status))
	if err != nil {
		utils.RespondWithAppError(c, err, ac.Verbose)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GetDashboardOverview returns the admin headline counts and the latest
// bookings
func (ac *AdminController) GetDashboardOverview(c *gin.Context) {
	overview, err := ac.Bookings.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err, ac.Verbose)
		return
	}

	c.JSON(http.StatusOK, overview)
}
