package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"propertybooking-backend/config"
	"propertybooking-backend/controllers"
	"propertybooking-backend/middlewares"
)

type Deps struct {
	Log         *logrus.Logger
	FrontendURL string
	ServiceName string
	Tracing     bool
	Verbose     bool

	Auth         middlewares.Authenticator
	Bookings     *controllers.BookingController
	Admin        *controllers.AdminController
	Stripe       *controllers.StripeController
	Integrations *controllers.IntegrationController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.RequestID())
	r.Use(middlewares.Recovery(d.Log, d.Verbose))
	if d.Tracing {
		r.Use(otelgin.Middleware(d.ServiceName))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{d.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", middlewares.HeaderRequestID},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger(d.Log))

	r.GET("/health", controllers.Health)

	api := r.Group("/api")
	{
		authed := middlewares.Authenticate(d.Auth, d.Verbose)

		// Booking routes
		bookings := api.Group("/bookings", authed)
		{
			bookings.GET("/:id", d.Bookings.GetBooking)
			bookings.POST("/create", middlewares.RequireContractor(), d.Bookings.CreateBooking)
		}

		// Admin routes
		admin := api.Group("/admin", authed, middlewares.RequireAdmin())
		{
			admin.GET("/bookings", d.Admin.ListBookings)
			admin.PUT("/bookings/:id/confirm", d.Admin.ConfirmBooking)
			admin.GET("/dashboard", d.Admin.GetDashboardOverview)
		}

		// Payment routes; the webhook is authenticated by its signature
		stripe := api.Group("/stripe")
		{
			stripe.POST("/create-session", d.Stripe.CreateSession)
			stripe.POST("/webhook", d.Stripe.Webhook)
		}

		integrations := api.Group("/integrations")
		{
			integrations.POST("/ghl", d.Integrations.ForwardToGHL)
			integrations.GET("/events", d.Integrations.ListEvents)
		}
	}

	r.NoRoute(middlewares.RouteNotFound)

	return r
}
