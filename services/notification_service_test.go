package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// fakeSink implements Sink for testing
type fakeSink struct {
	name        string
	DeliverFunc func(ctx context.Context, ev Event) error

	mu  sync.Mutex
	got []Event
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Deliver(ctx context.Context, ev Event) error {
	f.mu.Lock()
	f.got = append(f.got, ev)
	f.mu.Unlock()
	if f.DeliverFunc != nil {
		return f.DeliverFunc(ctx, ev)
	}
	return nil
}

func (f *fakeSink) events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.got...)
}

func TestEmitFansOutToEverySink(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	failing := &fakeSink{name: "failing", DeliverFunc: func(context.Context, Event) error {
		return errors.New("unreachable")
	}}
	panicking := &fakeSink{name: "panicking", DeliverFunc: func(context.Context, Event) error {
		panic("boom")
	}}

	svc := NewNotificationService(quietLogger(), ok, failing, panicking)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	svc.Emit(ctx, EventBookingCreated, map[string]any{"booking_id": "b-1"})
	// a finished request must not abort delivery
	cancel()
	svc.Wait()

	for _, s := range []*fakeSink{ok, failing, panicking} {
		evs := s.events()
		if len(evs) != 1 {
			t.Fatalf("sink %s got %d events, want 1", s.name, len(evs))
		}
		ev := evs[0]
		if ev.EventType != EventBookingCreated || ev.Source != "property-booking-system" || ev.Timestamp != "2024-01-01T12:00:00Z" {
			t.Errorf("sink %s envelope = %+v", s.name, ev)
		}
	}
}

func TestEmitDetachesFromRequestContext(t *testing.T) {
	var ctxErr error
	sink := &fakeSink{name: "ctx", DeliverFunc: func(ctx context.Context, _ Event) error {
		time.Sleep(10 * time.Millisecond)
		ctxErr = ctx.Err()
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	}}
	svc := NewNotificationService(quietLogger(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Emit(ctx, EventPaymentExpired, nil)
	cancel()
	svc.Wait()

	if ctxErr != nil {
		t.Errorf("delivery context error = %v, want nil", ctxErr)
	}
}

func TestEmitLogsSkippedSink(t *testing.T) {
	var out bytes.Buffer
	log := logrus.New()
	log.SetOutput(&out)
	log.SetFormatter(&logrus.JSONFormatter{})

	svc := NewNotificationService(log, NewWebhookSink("", nil))
	svc.Emit(context.Background(), EventBookingCreated, map[string]any{"booking_id": "b-1"})
	svc.Wait()

	var entry map[string]any
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry %q: %v", out.String(), err)
	}
	if entry["msg"] != "notification sink not configured, skipping" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if strings.Contains(out.String(), "notification delivered") {
		t.Error("skipped delivery was logged as delivered")
	}
}

func TestEmitWithoutSinks(t *testing.T) {
	svc := NewNotificationService(quietLogger())
	svc.Emit(context.Background(), EventBookingCreated, map[string]any{})
	svc.Wait()
}

func TestWebhookSinkDeliver(t *testing.T) {
	var (
		mu        sync.Mutex
		body      Event
		userAgent string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		userAgent = r.Header.Get("User-Agent")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, srv.Client())
	ev := Event{EventType: EventPaymentSucceeded, Data: map[string]any{"booking_id": "b-1"}, Timestamp: "2024-01-01T00:00:00Z", Source: "property-booking-system"}
	if err := sink.Deliver(context.Background(), ev); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if userAgent != "Property-Booking-System/1.0" {
		t.Errorf("User-Agent = %q", userAgent)
	}
	if body.EventType != EventPaymentSucceeded || body.Data["booking_id"] != "b-1" {
		t.Errorf("body = %+v", body)
	}
}

func TestWebhookSinkUnconfigured(t *testing.T) {
	sink := NewWebhookSink("", nil)
	if sink.Configured() {
		t.Error("Configured() = true with empty url")
	}
	if err := sink.Deliver(context.Background(), Event{}); !errors.Is(err, ErrSinkNotConfigured) {
		t.Errorf("Deliver() error = %v, want ErrSinkNotConfigured", err)
	}
	if _, err := sink.Forward(context.Background(), map[string]any{}); !errors.Is(err, ErrSinkNotConfigured) {
		t.Errorf("Forward() error = %v, want ErrSinkNotConfigured", err)
	}
}

func TestWebhookSinkForward(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		if got["event_type"] == "reject" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"bad payload"}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, srv.Client())
	sink.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }

	status, err := sink.Forward(context.Background(), map[string]any{"event_type": "custom", "data": map[string]any{"k": "v"}})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if status != http.StatusAccepted {
		t.Errorf("status = %d, want 202", status)
	}
	if got["source"] != "property-booking-system" || got["forwarded_at"] != "2024-02-03T04:05:06Z" {
		t.Errorf("forwarded body = %v", got)
	}

	status, err = sink.Forward(context.Background(), map[string]any{"event_type": "reject"})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Forward() error = %v, want UpstreamError", err)
	}
	if status != http.StatusUnprocessableEntity || !strings.Contains(upstream.Body, "bad payload") {
		t.Errorf("status %d body %q", status, upstream.Body)
	}
}

func TestSummarizeEvent(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{
			Event{EventType: EventBookingConfirmed, Data: map[string]any{"booking_id": "b-1", "status": "confirmed", "admin_name": "Ada"}},
			"Booking b-1 confirmed by Ada",
		},
		{
			Event{EventType: EventPaymentSucceeded, Data: map[string]any{"booking_id": "b-2", "amount_paid": 150.0}},
			"Payment of 150 received for booking b-2",
		},
		{
			Event{EventType: EventPaymentExpired, Data: map[string]any{"booking_id": "b-3"}},
			"Checkout expired for booking b-3",
		},
	}
	for _, tt := range tests {
		if got := SummarizeEvent(tt.ev); got != tt.want {
			t.Errorf("SummarizeEvent(%s) = %q, want %q", tt.ev.EventType, got, tt.want)
		}
	}
}

func TestEventCatalogCoversEmittedEvents(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range EventCatalog() {
		seen[d.EventType] = true
	}
	for _, e := range []string{EventBookingCreated, EventBookingConfirmed, EventPaymentSucceeded, EventPaymentExpired} {
		if !seen[e] {
			t.Errorf("catalog missing %s", e)
		}
	}
}
