package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"logistics-dashboard/internal/events"

	skafka "github.com/segmentio/kafka-go"
)

// fakeWriter is a test writer that records messages written.
type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := events.NewKafkaPublisherWithWriter(fw)

	c := events.NewChange("shipment", "shp-001", events.ActionUpdated, map[string]string{"status": "DELIVERED"})
	if err := p.Publish(context.Background(), c); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}

	msg := fw.msgs[0]
	if string(msg.Key) != "shipment:shp-001" {
		t.Errorf("expected key shipment:shp-001, got %s", msg.Key)
	}
	var decoded events.Change
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("message is not JSON: %v", err)
	}
	if decoded.ID != c.ID || decoded.Action != events.ActionUpdated || decoded.Entity != "shipment" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[1].Value) != "updated" {
		t.Errorf("unexpected headers: %+v", msg.Headers)
	}

	if err := p.Close(); err != nil || !fw.closed {
		t.Errorf("expected writer closed, err=%v", err)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := events.NewKafkaPublisherWithWriter(&fakeWriter{err: boom})
	err := p.Publish(context.Background(), events.NewChange("alert", "alt-01", events.ActionUpdated, nil))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped broker error, got %v", err)
	}
}

func TestLogPublisher_Forwards(t *testing.T) {
	fw := &fakeWriter{}
	p := events.LogPublisher{Next: events.NewKafkaPublisherWithWriter(fw)}
	if err := p.Publish(context.Background(), events.NewChange("vehicle", "veh-01", events.ActionUpdated, nil)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Errorf("expected message forwarded, got %d", len(fw.msgs))
	}
	if err := (events.LogPublisher{}).Publish(context.Background(), events.Change{}); err != nil {
		t.Errorf("expected nil Next to be accepted, got %v", err)
	}
}
