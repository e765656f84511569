// Package fanout routes telemetry events to live subscribers. Topics are
// keyed by asset identifier; delivery is best-effort and bounded so one
// slow consumer can never stall the publisher or its peers.
package fanout

import (
	"sync"

	"github.com/google/uuid"

	"github.com/unw4/TrustChain/internal/domain/telemetry"
	"github.com/unw4/TrustChain/internal/metrics"
	"github.com/unw4/TrustChain/pkg/logger"
)

// Event types pushed to subscribers.
const (
	EventReading = "reading"
	EventAnomaly = "anomaly"
)

// Event is one message delivered over an asset channel.
type Event struct {
	Type    string            `json:"type"`
	Reading telemetry.Reading `json:"reading"`
}

// DefaultOutboxSize is the per-subscriber buffer. Overflow drops the event
// for that subscriber only.
const DefaultOutboxSize = 64

// Subscriber is a live viewer's endpoint. Events arrive on Events() until
// Close, which is idempotent and detaches the subscriber from every topic.
type Subscriber struct {
	id     string
	hub    *Hub
	out    chan Event
	closed chan struct{}
	once   sync.Once
}

// Events returns the subscriber's delivery channel. It is closed by Close.
func (s *Subscriber) Events() <-chan Event {
	return s.out
}

// ID returns the subscriber's unique identifier.
func (s *Subscriber) ID() string {
	return s.id
}

// Close detaches the subscriber from all topics and closes its channel.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.hub.drop(s)
		close(s.out)
		metrics.Subscribers(-1)
	})
}

// topic serializes delivery for one asset channel so every subscriber
// observes the same event order.
type topic struct {
	mu   sync.Mutex
	subs map[string]*Subscriber
}

// Hub is the telemetry fan-out. Publish to a topic with no subscribers is
// a no-op.
type Hub struct {
	mu         sync.RWMutex
	topics     map[string]*topic
	outboxSize int
	log        *logger.Logger
}

// Option customizes a Hub.
type Option func(*Hub)

// WithOutboxSize overrides the per-subscriber buffer size.
func WithOutboxSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.outboxSize = n
		}
	}
}

// WithLogger injects a logger.
func WithLogger(log *logger.Logger) Option {
	return func(h *Hub) { h.log = log }
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		topics:     make(map[string]*topic),
		outboxSize: DefaultOutboxSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.NewDefault("fanout")
	}
	return h
}

// NewSubscriber creates a subscriber not yet attached to any topic.
func (h *Hub) NewSubscriber() *Subscriber {
	metrics.Subscribers(1)
	return &Subscriber{
		id:     uuid.NewString(),
		hub:    h,
		out:    make(chan Event, h.outboxSize),
		closed: make(chan struct{}),
	}
}

// Subscribe registers the subscriber under an asset channel. Subscribing
// twice to the same channel is a no-op. The hub lock is held while the
// subscriber is added so a concurrent prune cannot orphan the topic.
func (h *Hub) Subscribe(assetID string, s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.topics[assetID]
	if !ok {
		t = &topic{subs: make(map[string]*Subscriber)}
		h.topics[assetID] = t
	}

	t.mu.Lock()
	t.subs[s.id] = s
	t.mu.Unlock()
}

// Unsubscribe removes the subscriber from an asset channel. Unknown
// channels and unregistered subscribers are ignored. A topic left with
// no subscribers is pruned so the map does not grow with every asset
// ever watched.
func (h *Hub) Unsubscribe(assetID string, s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.topics[assetID]
	if !ok {
		return
	}

	t.mu.Lock()
	delete(t.subs, s.id)
	empty := len(t.subs) == 0
	t.mu.Unlock()
	if empty {
		delete(h.topics, assetID)
	}
}

// Publish delivers the event to every current subscriber of the asset
// channel, in registration-independent but publish-consistent order. A
// full outbox drops the event for that subscriber only; Publish never
// blocks on a consumer.
func (h *Hub) Publish(assetID string, ev Event) {
	h.mu.RLock()
	t, ok := h.topics[assetID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		select {
		case <-s.closed:
		case s.out <- ev:
		default:
			metrics.DroppedEvent()
			h.log.WithField("asset_id", assetID).
				WithField("subscriber", s.id).
				Warn("subscriber outbox full, dropping event")
		}
	}
}

// drop removes a subscriber from every topic, pruning topics it leaves
// empty. Called from Close.
func (h *Hub) drop(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for assetID, t := range h.topics {
		t.mu.Lock()
		delete(t.subs, s.id)
		empty := len(t.subs) == 0
		t.mu.Unlock()
		if empty {
			delete(h.topics, assetID)
		}
	}
}
