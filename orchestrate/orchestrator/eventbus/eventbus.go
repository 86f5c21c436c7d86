// Package eventbus implements C1: multi-subscriber fan-out of workflow
// progress events. Publish never blocks; a slow subscriber loses its oldest
// buffered events instead of stalling the publisher, mirroring the bounded
// MessageChannel pattern in orchestrate/hub but trading "block the sender"
// for "drop the oldest entry," per spec §4.1.
package eventbus

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the kind of progress event published on the bus.
type Kind string

const (
	KindWorkflowStarted   Kind = "workflowStarted"
	KindTaskStarted       Kind = "taskStarted"
	KindTaskProgress      Kind = "taskProgress"
	KindTaskCompleted     Kind = "taskCompleted"
	KindTaskFailed        Kind = "taskFailed"
	KindQCStarted         Kind = "qcStarted"
	KindQCCompleted       Kind = "qcCompleted"
	KindArtifactCaptured  Kind = "artifactCaptured"
	KindWorkflowCompleted Kind = "workflowCompleted"
	KindWorkflowCancelled Kind = "workflowCancelled"
	KindPersistError      Kind = "persistError"
)

// Event is one message carried on the bus.
type Event struct {
	ExecutionID string
	Kind        Kind
	Payload     map[string]any
	Timestamp   time.Time
	// DroppedSinceLast is non-zero when this subscription dropped buffered
	// events before this one was delivered (surfaced per spec §4.1).
	DroppedSinceLast int
}

// Filter narrows a subscription. Zero-value Filter matches everything.
type Filter struct {
	ExecutionID string // empty matches any execution
	Kinds       []Kind // empty matches any kind
}

func (f Filter) matches(e Event) bool {
	if f.ExecutionID != "" && f.ExecutionID != e.ExecutionID {
		return false
	}
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == e.Kind {
			return true
		}
	}
	return false
}

const defaultBufferSize = 256

// Subscription is a bounded, lazily-drained event stream for one subscriber.
type Subscription struct {
	// ID identifies this subscription for diagnostics and logging, e.g. to
	// correlate a drop counter back to a specific subscriber in an
	// operational log line, mirroring session/memory.go's use of
	// uuid.Must(uuid.NewV7()) for a per-entity id.
	ID       string
	filter   Filter
	mu       sync.Mutex
	buf      []Event
	capacity int
	dropped  int
	closed   bool
	signal   chan struct{}
}

// Events returns a channel of events, closed when the subscription is
// closed by the bus. Callers that don't read fast enough simply miss
// delivery of the drop-driven catch-up; the bus never blocks regardless.
func (s *Subscription) Events() <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			ev, ok := s.next()
			if !ok {
				return
			}
			out <- ev
		}
	}()
	return out
}

func (s *Subscription) next() (Event, bool) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			ev := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return ev, true
		}
		if s.closed {
			s.mu.Unlock()
			return Event{}, false
		}
		signal := s.signal
		s.mu.Unlock()
		<-signal
	}
}

func (s *Subscription) deliver(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if len(s.buf) >= s.capacity {
		s.buf = s.buf[1:]
		s.dropped++
	}
	e.DroppedSinceLast = s.dropped
	s.dropped = 0
	s.buf = append(s.buf, e)

	close(s.signal)
	s.signal = make(chan struct{})
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.signal)
}

// Bus fans out published events to every subscription whose filter matches.
type Bus struct {
	mu         sync.RWMutex
	subs       map[string]*Subscription
	bufferSize int
}

// New creates a Bus whose subscriptions use the given per-subscriber buffer
// size (spec default 256; pass 0 to use the default).
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Bus{
		subs:       make(map[string]*Subscription),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new subscription matching filter. The returned
// Subscription must be closed via Unsubscribe when no longer needed.
func (b *Bus) Subscribe(filter Filter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		ID:       uuid.NewString(),
		filter:   filter,
		capacity: b.bufferSize,
		signal:   make(chan struct{}),
	}
	b.subs[sub.ID] = sub
	return sub
}

// Unsubscribe removes and closes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub.ID)
	b.mu.Unlock()
	sub.close()
}

// Publish fans e out to every matching subscription without blocking. Per
// spec §4.1, ordering is preserved per executionId within a single
// subscription; across subscriptions no ordering is guaranteed (delivery
// here is sequential per subscription matching Go's lack of fairness
// guarantees across map iteration, which is acceptable since no cross-
// subscription order is promised).
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.filter.matches(e) {
			sub.deliver(e)
		}
	}
}

// Close shuts down every outstanding subscription. The bus itself may still
// be published to afterward (new Subscribe calls create fresh subscribers).
func (b *Bus) Close() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[string]*Subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
