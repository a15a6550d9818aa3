package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"propertybooking-backend/config"
	"propertybooking-backend/controllers"
	"propertybooking-backend/repository"
	"propertybooking-backend/routes"
	"propertybooking-backend/services"
	"propertybooking-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	// prices and amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	tracing := cfg.OTLPEndpoint != ""
	if tracing {
		shutdown, err := config.InitTracer(context.Background(), cfg.OTLPEndpoint, cfg.ServiceName, cfg.Env)
		if err != nil {
			logger.WithError(err).Fatal("tracer init failed")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	db, err := config.ConnectDB(cfg.DatabaseURL, tracing, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect database")
	}
	store := repository.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	var verifier services.TokenVerifier
	if cfg.SupabaseJWTSecret != "" {
		verifier = services.NewJWTVerifier(cfg.SupabaseJWTSecret)
	} else {
		verifier = services.NewRemoteVerifier(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	}
	identity := services.NewIdentityService(verifier, store)

	ghl := services.NewWebhookSink(cfg.GHLWebhookURL, nil)
	var sinks []services.Sink
	if ghl.Configured() {
		sinks = append(sinks, ghl)
	} else {
		logger.Info("GHL_WEBHOOK_URL not set, webhook notifications disabled")
	}
	if cfg.TwilioEnabled() {
		if utils.ValidatePhone(cfg.TwilioPhoneNumber) && utils.ValidatePhone(cfg.TwilioNotifyTo) {
			sinks = append(sinks, services.NewSMSSink(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.TwilioNotifyTo))
		} else {
			logger.Warn("invalid Twilio phone number, sms notifications disabled")
		}
	}
	if cfg.AMQPURL != "" {
		amqpSink, err := services.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.WithError(err).Error("amqp sink disabled")
		} else {
			defer amqpSink.Close()
			sinks = append(sinks, amqpSink)
		}
	}
	notifier := services.NewNotificationService(logger, sinks...)

	var gateway services.CheckoutGateway = services.DisabledGateway{}
	if cfg.StripeEnabled() {
		gateway = services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	bookings := services.NewBookingService(store, notifier, logger)
	payments := services.NewPaymentService(store, gateway, bookings, cfg.FrontendURL, logger)

	verbose := cfg.Development()
	r := routes.SetupRouter(routes.Deps{
		Log:          logger,
		FrontendURL:  cfg.FrontendURL,
		ServiceName:  cfg.ServiceName,
		Tracing:      tracing,
		Verbose:      verbose,
		Auth:         identity,
		Bookings:     &controllers.BookingController{Bookings: bookings, Verbose: verbose},
		Admin:        &controllers.AdminController{Bookings: bookings, Verbose: verbose},
		Stripe:       &controllers.StripeController{Payments: payments, Verbose: verbose},
		Integrations: &controllers.IntegrationController{GHL: ghl, Log: logger, Verbose: verbose},
	})
	if cfg.Development() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	// let in-flight notifications finish
	notifier.Wait()
	logger.Info("server stopped")
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
