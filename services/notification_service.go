// services/notification_service.go
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	eventSource        = "property-booking-system"
	defaultSinkTimeout = 10 * time.Second
	notifierUserAgent  = "Property-Booking-System/1.0"
)

// Notifier receives lifecycle events. Emit never fails and never blocks on
// delivery.
type Notifier interface {
	Emit(ctx context.Context, eventType string, data map[string]any)
}

// Event is the envelope delivered to every sink.
type Event struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
	Source    string         `json:"source"`
}

// Sink delivers one event to one external system.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// NotificationService fans each event out to its sinks on background
// goroutines. Each delivery is attempted once with a bounded timeout.
type NotificationService struct {
	sinks   []Sink
	timeout time.Duration
	log     *logrus.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewNotificationService(log *logrus.Logger, sinks ...Sink) *NotificationService {
	return &NotificationService{
		sinks:   sinks,
		timeout: defaultSinkTimeout,
		log:     log,
		now:     time.Now,
	}
}

func (s *NotificationService) Emit(ctx context.Context, eventType string, data map[string]any) {
	if len(s.sinks) == 0 {
		s.log.WithField("event_type", eventType).Info("no notification sinks configured, skipping event")
		return
	}

	ev := Event{
		EventType: eventType,
		Data:      data,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Source:    eventSource,
	}

	// The request context is cancelled once the response is written.
	base := context.WithoutCancel(ctx)
	for _, sink := range s.sinks {
		s.wg.Add(1)
		go func(sink Sink) {
			defer s.wg.Done()
			s.deliver(base, sink, ev)
		}(sink)
	}
}

func (s *NotificationService) deliver(ctx context.Context, sink Sink, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{"sink": sink.Name(), "event_type": ev.EventType, "panic": r}).
				Error("notification sink panicked")
		}
	}()

	fields := logrus.Fields{"sink": sink.Name(), "event_type": ev.EventType}
	if err := sink.Deliver(ctx, ev); err != nil {
		if errors.Is(err, ErrSinkNotConfigured) {
			s.log.WithFields(fields).Info("notification sink not configured, skipping")
			return
		}
		s.log.WithFields(fields).WithError(err).Error("failed to deliver notification")
		return
	}
	s.log.WithFields(fields).Info("notification delivered")
}

// Wait blocks until in-flight deliveries finish. Used on shutdown.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}
