// Package nats adapts NATS core pub/sub to the bus port, so actors can
// consume topics backed by a real broker instead of the in-process bus.
package nats

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	natsgo "github.com/nats-io/nats.go"

	"github.com/codewandler/vrtx-go/ports/bus"
)

type (
	BusConfig struct {
		// Connect creates the underlying connection. Defaults to ConnectDefault().
		Connect Connector
		// Log for diagnostics. Optional.
		Log *slog.Logger
		// SubjectPrefix namespaces topics on the wire,
		// e.g. "vrtx" -> vrtx.topic.<name>. Defaults to "vrtx".
		SubjectPrefix string
	}

	// Bus is a bus.Bus backed by NATS subjects. Handlers run on NATS
	// delivery goroutines; consumers that need context affinity re-schedule
	// themselves (the actor layer does).
	Bus struct {
		nc      *natsgo.Conn
		closeNc closeFunc
		log     *slog.Logger
		prefix  string

		mu   sync.Mutex
		subs map[*natsgo.Subscription]struct{}

		closed atomic.Bool
	}
)

func NewBus(cfg BusConfig) (*Bus, error) {
	connFn := cfg.Connect
	if connFn == nil {
		connFn = ConnectDefault()
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	nc, closeNc, err := connFn()
	if err != nil {
		return nil, err
	}

	return &Bus{
		nc:      nc,
		closeNc: closeNc,
		log:     log.With(slog.String("bus", "nats")),
		prefix:  cfg.SubjectPrefix,
		subs:    make(map[*natsgo.Subscription]struct{}),
	}, nil
}

// subject returns the wire subject for a topic.
func (b *Bus) subject(topic string) string {
	p := b.prefix
	if p == "" {
		p = "vrtx"
	}
	return p + ".topic." + topic
}

func (b *Bus) Subscribe(topic string, h bus.Handler) (bus.Subscription, error) {
	if b.closed.Load() {
		return nil, bus.ErrClosed
	}
	if topic == "" {
		return nil, bus.ErrTopicRequired
	}

	sub, err := b.nc.Subscribe(b.subject(topic), func(msg *natsgo.Msg) {
		h(bus.Message{Topic: topic, Data: msg.Data})
	})
	if err != nil {
		return nil, fmt.Errorf("nats: subscribe %s: %w", topic, err)
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	b.log.Debug("subscribed", slog.String("topic", topic))
	return &subscription{sub: sub, b: b}, nil
}

func (b *Bus) Publish(topic string, data []byte) error {
	if b.closed.Load() {
		return bus.ErrClosed
	}
	if topic == "" {
		return bus.ErrTopicRequired
	}
	if err := b.nc.Publish(b.subject(topic), data); err != nil {
		return fmt.Errorf("nats: publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}

	b.mu.Lock()
	for s := range b.subs {
		_ = s.Unsubscribe()
	}
	b.subs = map[*natsgo.Subscription]struct{}{}
	b.mu.Unlock()

	if b.nc != nil {
		_ = b.nc.Drain()
		b.closeNc()
	}
	b.log.Debug("closed")
	return nil
}

type subscription struct {
	sub *natsgo.Subscription
	b   *Bus
}

func (s *subscription) Unsubscribe() error {
	err := s.sub.Unsubscribe()
	s.b.mu.Lock()
	delete(s.b.subs, s.sub)
	s.b.mu.Unlock()
	return err
}

var _ bus.Bus = (*Bus)(nil)
