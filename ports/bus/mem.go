package bus

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// MemoryBus is an in-process Bus. Delivery is asynchronous: Publish returns
// once the message has been handed to a goroutine per subscriber. Messages
// published to a topic with no subscribers are dropped.
type MemoryBus struct {
	mu  sync.RWMutex
	log *slog.Logger

	closed bool

	// topic -> subID -> handler
	subs map[string]map[string]Handler

	seq uint64
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs: make(map[string]map[string]Handler),
	}
}

func (b *MemoryBus) WithLog(log *slog.Logger) *MemoryBus {
	b.log = log.With(slog.String("bus", "mem"))
	return b
}

func (b *MemoryBus) Subscribe(topic string, h Handler) (Subscription, error) {
	if topic == "" {
		return nil, ErrTopicRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]Handler)
	}

	subID := fmt.Sprintf("sub.%d", atomic.AddUint64(&b.seq, 1))
	b.subs[topic][subID] = h

	b.log.Debug("subscribed", slog.String("topic", topic), slog.String("sub", subID))

	return &memSubscription{b: b, topic: topic, subID: subID}, nil
}

func (b *MemoryBus) Publish(topic string, data []byte) error {
	if topic == "" {
		return ErrTopicRequired
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	// Copy handlers to avoid holding the lock while invoking user code.
	subs := b.subs[topic]
	handlers := make([]Handler, 0, len(subs))
	for _, h := range subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	msg := Message{Topic: topic, Data: data}
	for _, h := range handlers {
		h := h
		go h(msg)
	}
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for topic := range b.subs {
		delete(b.subs, topic)
	}

	b.log.Debug("closed")
	return nil
}

type memSubscription struct {
	b     *MemoryBus
	topic string
	subID string
	once  sync.Once
}

func (s *memSubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()
		if subs := s.b.subs[s.topic]; subs != nil {
			delete(subs, s.subID)
			if len(subs) == 0 {
				delete(s.b.subs, s.topic)
			}
		}
	})
	return nil
}

var _ Bus = (*MemoryBus)(nil)
