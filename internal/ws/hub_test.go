package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/risick/microcredito-api/internal/domain/audit"
)

func TestHubSubscribeAndPublish(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Subscribe("borrower:b-1", client)
	hub.Publish("borrower:b-1", []byte(`{"event":"borrower_updated"}`))

	select {
	case msg := <-client.out:
		if string(msg) != `{"event":"borrower_updated"}` {
			t.Fatalf("unexpected payload: %s", string(msg))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for message")
	}

	hub.UnsubscribeAll(client)
	if hub.SubscriberCount("borrower:b-1") != 0 {
		t.Fatalf("expected no subscribers after unsubscribe")
	}
}

func TestHubUnsubscribeSingleChannel(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Subscribe(ChannelAudit, client)
	hub.Subscribe("borrower:b-1", client)
	hub.Unsubscribe(ChannelAudit, client)

	if hub.SubscriberCount(ChannelAudit) != 0 {
		t.Fatalf("expected audit channel to be empty")
	}
	if hub.SubscriberCount("borrower:b-1") != 1 {
		t.Fatalf("expected borrower channel to keep its subscriber")
	}
}

func TestSubscriptionTopic(t *testing.T) {
	cases := []struct {
		msg  subscribeMessage
		want string
	}{
		{subscribeMessage{Channel: "audit"}, ChannelAudit},
		{subscribeMessage{Channel: " Borrower ", BorrowerID: "b-9"}, "borrower:b-9"},
		{subscribeMessage{Channel: "borrower"}, ""},
		{subscribeMessage{Channel: "pool:repayments"}, ""},
	}
	for _, tc := range cases {
		if got := subscriptionTopic(tc.msg); got != tc.want {
			t.Fatalf("subscriptionTopic(%+v) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

type fakeRealtimeRepo struct {
	events []audit.Event
}

func (f *fakeRealtimeRepo) LatestAuditEventID(context.Context) (int64, error) { return 0, nil }

func (f *fakeRealtimeRepo) ListAuditEventsSince(_ context.Context, lastID int64, _ int32) ([]audit.Event, error) {
	out := []audit.Event{}
	for _, ev := range f.events {
		if ev.ID > lastID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func TestNotifierFansOutBorrowerEvents(t *testing.T) {
	hub := NewHub()
	auditClient := NewClient(nil)
	borrowerClient := NewClient(nil)
	hub.Subscribe(ChannelAudit, auditClient)
	hub.Subscribe("borrower:b-1", borrowerClient)

	repo := &fakeRealtimeRepo{events: []audit.Event{
		{ID: 1, Action: audit.ActionBorrowerUpdated, TargetType: audit.TargetBorrower, TargetID: "b-1"},
		{ID: 2, Action: audit.ActionUserUpdated, TargetType: audit.TargetUser, TargetID: "u-1"},
	}}
	n := NewNotifier(repo, hub, time.Second)
	if err := n.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if len(auditClient.out) != 2 {
		t.Fatalf("expected 2 audit messages, got %d", len(auditClient.out))
	}
	if len(borrowerClient.out) != 1 {
		t.Fatalf("expected 1 borrower message, got %d", len(borrowerClient.out))
	}
	var msg map[string]any
	if err := json.Unmarshal(<-borrowerClient.out, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg["event"] != audit.ActionBorrowerUpdated {
		t.Fatalf("unexpected event %v", msg["event"])
	}

	if err := n.tick(context.Background()); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if len(auditClient.out) != 2 {
		t.Fatalf("events must not be re-published")
	}
}
