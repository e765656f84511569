package fanout

import (
	"testing"
	"time"

	"github.com/unw4/TrustChain/internal/domain/telemetry"
)

func reading(assetID string, value int64) Event {
	return Event{
		Type: EventReading,
		Reading: telemetry.Reading{
			AssetID: assetID,
			Value:   value,
		},
	}
}

func collect(t *testing.T, s *Subscriber, n int) []Event {
	t.Helper()
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		select {
		case ev := <-s.Events():
			events = append(events, ev)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	return events
}

func TestPublishReachesAllSubscribersInOrder(t *testing.T) {
	hub := NewHub()
	a := hub.NewSubscriber()
	b := hub.NewSubscriber()
	defer a.Close()
	defer b.Close()

	hub.Subscribe("0xplane", a)
	hub.Subscribe("0xplane", b)

	for i := int64(0); i < 5; i++ {
		hub.Publish("0xplane", reading("0xplane", i))
	}

	for _, sub := range []*Subscriber{a, b} {
		events := collect(t, sub, 5)
		for i, ev := range events {
			if ev.Reading.Value != int64(i) {
				t.Fatalf("event %d has value %d, order broken", i, ev.Reading.Value)
			}
		}
	}
}

func TestPublishIsolatedPerAsset(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscriber()
	defer sub.Close()
	hub.Subscribe("0xplane", sub)

	hub.Publish("0xother", reading("0xother", 1))
	hub.Publish("0xplane", reading("0xplane", 2))

	ev := collect(t, sub, 1)[0]
	if ev.Reading.AssetID != "0xplane" {
		t.Fatalf("received event for wrong asset %s", ev.Reading.AssetID)
	}

	select {
	case extra := <-sub.Events():
		t.Fatalf("unexpected extra event: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishToEmptyTopicIsNoop(t *testing.T) {
	hub := NewHub()
	// Must not panic or block.
	hub.Publish("0xnobody", reading("0xnobody", 1))
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(WithOutboxSize(2))
	slow := hub.NewSubscriber()
	fast := hub.NewSubscriber()
	defer slow.Close()
	defer fast.Close()

	hub.Subscribe("0xplane", slow)
	hub.Subscribe("0xplane", fast)

	done := make(chan struct{})
	go func() {
		// Nobody drains slow; publish must still complete.
		for i := int64(0); i < 10; i++ {
			hub.Publish("0xplane", reading("0xplane", i))
			// Keep fast drained so only slow overflows.
			<-fast.Events()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}

	// Slow kept the first events and dropped the rest.
	events := collect(t, slow, 2)
	if events[0].Reading.Value != 0 || events[1].Reading.Value != 1 {
		t.Fatalf("slow subscriber lost the oldest events: %+v", events)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscriber()
	defer sub.Close()

	hub.Subscribe("0xplane", sub)
	hub.Unsubscribe("0xplane", sub)
	hub.Publish("0xplane", reading("0xplane", 1))

	select {
	case ev := <-sub.Events():
		t.Fatalf("received event after unsubscribe: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseIsIdempotentAndDetaches(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscriber()
	hub.Subscribe("0xplane", sub)

	sub.Close()
	sub.Close()

	// Channel is closed, not blocked.
	if _, ok := <-sub.Events(); ok {
		t.Fatalf("events channel still open after close")
	}

	// Publishing after close must not panic.
	hub.Publish("0xplane", reading("0xplane", 1))
}

func topicCount(hub *Hub) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.topics)
}

func TestUnsubscribePrunesEmptyTopic(t *testing.T) {
	hub := NewHub()
	a := hub.NewSubscriber()
	b := hub.NewSubscriber()
	defer a.Close()
	defer b.Close()

	hub.Subscribe("0xplane", a)
	hub.Subscribe("0xplane", b)

	hub.Unsubscribe("0xplane", a)
	if n := topicCount(hub); n != 1 {
		t.Fatalf("topic count = %d with one subscriber left", n)
	}

	hub.Unsubscribe("0xplane", b)
	if n := topicCount(hub); n != 0 {
		t.Fatalf("topic count = %d after last unsubscribe", n)
	}

	// Re-subscribing after a prune works as on a fresh topic.
	hub.Subscribe("0xplane", a)
	hub.Publish("0xplane", reading("0xplane", 1))
	if events := collect(t, a, 1); events[0].Reading.Value != 1 {
		t.Fatalf("unexpected event after resubscribe: %+v", events[0])
	}
}

func TestClosePrunesEmptyTopics(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 3; i++ {
		sub := hub.NewSubscriber()
		hub.Subscribe("0xplane", sub)
		hub.Subscribe("0xcolumn", sub)
		sub.Close()
	}
	if n := topicCount(hub); n != 0 {
		t.Fatalf("topic count = %d after all subscribers closed", n)
	}
}

func TestSubscribeTwiceDeliversOnce(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscriber()
	defer sub.Close()

	hub.Subscribe("0xplane", sub)
	hub.Subscribe("0xplane", sub)
	hub.Publish("0xplane", reading("0xplane", 1))

	collect(t, sub, 1)
	select {
	case ev := <-sub.Events():
		t.Fatalf("duplicate delivery: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
