package service

import (
	"testing"
	"time"
)

func TestBroadcaster_SubscribeAndBroadcast(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("session-1", nil)
	defer b.Unsubscribe(sub)

	b.BroadcastLine("session-1", 3, "unknown opcode")

	select {
	case event := <-sub.Channel:
		if event.Type != EventLine {
			t.Errorf("expected EventLine, got %v", event.Type)
		}
		if event.SessionID != "session-1" {
			t.Errorf("expected session-1, got %q", event.SessionID)
		}
		if line, ok := event.Data["line"].(int); !ok || line != 3 {
			t.Errorf("expected line 3, got %v", event.Data["line"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroadcaster_SessionFiltering(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub1 := b.Subscribe("session-1", nil)
	sub2 := b.Subscribe("session-2", nil)
	defer b.Unsubscribe(sub1)
	defer b.Unsubscribe(sub2)

	b.BroadcastDone("session-1", 0)

	select {
	case <-sub1.Channel:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for session-1's event")
	}

	select {
	case event := <-sub2.Channel:
		t.Fatalf("session-2 should not have received session-1's event, got %v", event)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBroadcaster_EventTypeFiltering(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("session-1", []EventType{EventDone})
	defer b.Unsubscribe(sub)

	b.BroadcastLine("session-1", 1, "ignored")
	b.BroadcastDone("session-1", 1)

	select {
	case event := <-sub.Channel:
		if event.Type != EventDone {
			t.Errorf("expected only EventDone to pass the filter, got %v", event.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}

	select {
	case event := <-sub.Channel:
		t.Fatalf("expected no further events, got %v", event)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBroadcaster_SubscriptionCount(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	if got := b.SubscriptionCount(); got != 0 {
		t.Fatalf("expected 0 subscriptions, got %d", got)
	}

	sub := b.Subscribe("session-1", nil)
	if got := b.SubscriptionCount(); got != 1 {
		t.Fatalf("expected 1 subscription, got %d", got)
	}

	b.Unsubscribe(sub)
	time.Sleep(10 * time.Millisecond)
	if got := b.SubscriptionCount(); got != 0 {
		t.Fatalf("expected 0 subscriptions after unsubscribe, got %d", got)
	}
}
