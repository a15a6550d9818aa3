package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertybooking-backend/services"
	"propertybooking-backend/utils"
)

type Forwarder interface {
	Configured() bool
	Forward(ctx context.Context, payload map[string]any) (int, error)
}

type GHLWebhookInput struct {
	EventType string         `json:"event_type" binding:"required"`
	Data      map[string]any `json:"data" binding:"required"`
	Timestamp string         `json:"timestamp"`
}

type IntegrationController struct {
	GHL     Forwarder
	Log     *logrus.Logger
	Verbose bool
}

// ForwardToGHL relays an event to the GoHighLevel webhook
func (ic *IntegrationController) ForwardToGHL(c *gin.Context) {
	var input GHLWebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithAppError(c, utils.Validation("Validation error", utils.FieldErrors(err, &input)), ic.Verbose)
		return
	}

	payload := map[string]any{
		"event_type": input.EventType,
		"data":       input.Data,
	}
	if input.Timestamp != "" {
		payload["timestamp"] = input.Timestamp
	}

	status, err := ic.GHL.Forward(c.Request.Context(), payload)
	if errors.Is(err, services.ErrSinkNotConfigured) {
		ic.Log.Warn("GHL_WEBHOOK_URL not configured, skipping webhook forwarding")
		c.JSON(http.StatusOK, gin.H{"message": "GHL webhook URL not configured"})
		return
	}
	if err != nil {
		ic.Log.WithError(err).WithField("event_type", input.EventType).Error("forwarding to GHL failed")
		body := gin.H{"error": "Failed to forward to GoHighLevel"}
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) && upstream.Body != "" {
			body["details"] = upstream.Body
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, body)
		return
	}

	ic.Log.WithFields(logrus.Fields{"event_type": input.EventType, "status": status}).Info("forwarded event to GHL")
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"forwarded":           true,
		"ghl_response_status": status,
	})
}

// ListEvents documents the events this service emits
func (ic *IntegrationController) ListEvents(c *gin.Context) {
	webhookURL := "not configured"
	if ic.GHL.Configured() {
		webhookURL = "configured"
	}
	c.JSON(http.StatusOK, gin.H{
		"available_events": services.EventCatalog(),
		"webhook_url":      webhookURL,
	})
}
