package amqp

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/log"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	want := map[int]time.Duration{
		0:  time.Second,
		1:  2 * time.Second,
		3:  8 * time.Second,
		4:  16 * time.Second,
		5:  maxBackoff,
		12: maxBackoff,
	}
	for attempt, d := range want {
		if got := exponentialBackoff(attempt); got != d {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", attempt, got, d)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{amqp091.ErrClosed, true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("channel closed"), true},
		{errors.New("PRECONDITION_FAILED - inequivalent arg"), false},
	}
	for _, tt := range tests {
		if got := isConnectionError(tt.err); got != tt.want {
			t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCircuitBreakerTransitions(t *testing.T) {
	c := &Client{}
	if c.isCircuitOpen() {
		t.Fatal("new client starts with an open circuit")
	}

	for i := 0; i < maxFailures-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("circuit opened after %d failures", maxFailures-1)
	}
	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatalf("circuit still closed after %d failures", maxFailures)
	}

	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if c.isCircuitOpen() {
		t.Fatal("circuit should allow a trial call once the timeout passed")
	}
	if s := atomic.LoadInt32(&c.state); s != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", s)
	}

	c.recordFailure()
	if s := atomic.LoadInt32(&c.state); s != StateOpen {
		t.Fatalf("failed trial call left state = %d, want open", s)
	}

	c.recordSuccess()
	if c.isCircuitOpen() || atomic.LoadInt64(&c.failureCount) != 0 {
		t.Fatal("success should close the circuit and clear the failure count")
	}
}

func TestPublishRecordEvent_ShortCircuits(t *testing.T) {
	ev := NewRecordEvent("notes", ActionCreated, "n-1", "u-1")

	open := &Client{exchangeName: "fintrack", state: StateOpen, lastFailure: time.Now()}
	err := open.PublishRecordEvent(context.Background(), ev)
	if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Fatalf("publish with open circuit: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&Client{}).PublishRecordEvent(ctx, ev); !errors.Is(err, context.Canceled) {
		t.Fatalf("publish with cancelled context: err = %v", err)
	}
}

func TestConsumeRecordEvents_PublishOnly(t *testing.T) {
	c := &Client{exchangeName: "fintrack", logger: log.Discard()}
	err := c.ConsumeRecordEvents(context.Background(), func(context.Context, *RecordEvent) error { return nil })
	if !errors.Is(err, ErrPublishOnly) {
		t.Fatalf("ConsumeRecordEvents without a queue: err = %v", err)
	}
}

type recordingAck struct {
	acked, nacked, requeued bool
}

func (a *recordingAck) Ack(uint64, bool) error { a.acked = true; return nil }

func (a *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *recordingAck) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func TestHandleDelivery(t *testing.T) {
	good, err := NewRecordEvent("budgets", ActionDeleted, "b-1", "u-1").ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		want       recordingAck
	}{
		{"handled", good, nil, recordingAck{acked: true}},
		{"handler fails", good, errors.New("cache busy"), recordingAck{nacked: true, requeued: true}},
		{"malformed", []byte(`{"entity":`), nil, recordingAck{nacked: true}},
	}
	c := &Client{logger: log.Discard()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAck{}
			var seen *RecordEvent
			c.handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: tt.body},
				func(_ context.Context, ev *RecordEvent) error {
					seen = ev
					return tt.handlerErr
				})
			if *ack != tt.want {
				t.Errorf("ack = %+v, want %+v", *ack, tt.want)
			}
			if tt.name != "malformed" && (seen == nil || seen.RecordID != "b-1") {
				t.Errorf("handler saw %+v", seen)
			}
		})
	}
}

func TestNewRecordEvent(t *testing.T) {
	ev := NewRecordEvent("transactions", ActionUpdated, "t-1", "u-1")
	if ev.EventID == "" {
		t.Error("event id not set")
	}
	if ev.Entity != "transactions" || ev.Action != ActionUpdated || ev.RecordID != "t-1" || ev.Owner != "u-1" {
		t.Errorf("NewRecordEvent = %+v", ev)
	}
	if time.Since(ev.At) > time.Second {
		t.Error("At is not the current time")
	}
}

func TestRecordEventFromJSON(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	body, err := RecordEvent{EventID: "e-1", Entity: "budgets", Action: ActionDeleted, RecordID: "b-1", Owner: "u-1", At: at}.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := RecordEventFromJSON(body)
	if err != nil {
		t.Fatalf("RecordEventFromJSON: %v", err)
	}
	if parsed.RecordID != "b-1" || parsed.Action != ActionDeleted || !parsed.At.Equal(at) {
		t.Errorf("parsed = %+v", parsed)
	}

	for name, raw := range map[string]string{
		"truncated":      `{"entity":`,
		"missing owner":  `{"entity":"notes","action":"created","record_id":"n"}`,
		"unknown action": `{"entity":"notes","action":"archived","record_id":"n","owner":"u"}`,
	} {
		if _, err := RecordEventFromJSON([]byte(raw)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
