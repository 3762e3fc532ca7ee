package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := "case-123"
	at := time.Date(2024, 5, 16, 14, 15, 0, 0, time.FixedZone("IST", 5*3600+1800))

	event := NewBaseEvent("verification.case.approved", aggregateID, "VerificationCase", at)

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}

	if event.EventType() != "verification.case.approved" {
		t.Errorf("expected event type %q, got %q", "verification.case.approved", event.EventType())
	}

	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}

	if event.AggregateType() != "VerificationCase" {
		t.Errorf("expected aggregate type %q, got %q", "VerificationCase", event.AggregateType())
	}

	if !event.OccurredAt().Equal(at) || event.OccurredAt().Location() != time.UTC {
		t.Errorf("expected occurredAt %v in UTC, got %v", at, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewBaseEventGeneratesDistinctIDs(t *testing.T) {
	now := time.Now()
	a := NewBaseEvent("x", "1", "A", now)
	b := NewBaseEvent("x", "1", "A", now)
	if a.EventID() == b.EventID() {
		t.Errorf("expected distinct event IDs, both were %q", a.EventID())
	}
}

func TestBaseEventJSONEnvelope(t *testing.T) {
	type embedding struct {
		BaseEvent
		Reason string `json:"reason"`
	}
	evt := embedding{
		BaseEvent: NewBaseEvent("verification.case.rejected", "case-9", "VerificationCase", time.Now()),
		Reason:    "illegible",
	}

	raw, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"event_id", "event_type", "aggregate_id", "aggregate_type", "occurred_at", "reason"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in %s", key, raw)
		}
	}
}
