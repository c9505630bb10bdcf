// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package events carries shop domain events (orders placed, products rated)
// from the services that commit them to the consumers that react to them.
//
// The Bus publishes JSON-encoded watermill messages. With no broker URL it
// runs on an in-process gochannel pub/sub; with one it uses NATS JetStream
// through watermill-nats, on a stream that is created or updated at startup.
// Publishing happens after the store write committed, so a publish failure
// is logged and counted but never returned to the HTTP caller.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/metrics"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus closed")

// Publisher publishes domain events. Services depend on this interface so a
// disabled bus can be swapped for NopPublisher.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Config configures the bus transport.
type Config struct {
	// NATSURL selects NATS JetStream when set; otherwise events stay in process.
	NATSURL string

	// StreamName is the JetStream stream holding every shop.> subject.
	StreamName string

	// BufferSize is the per-subscriber buffer of the in-process transport.
	BufferSize int64

	MaxReconnects int
	ReconnectWait time.Duration
	AckWait       time.Duration
	MaxAge        time.Duration
}

// DefaultConfig returns the in-process transport defaults.
func DefaultConfig() Config {
	return Config{
		StreamName:    "SHOP",
		BufferSize:    256,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		AckWait:       30 * time.Second,
		MaxAge:        7 * 24 * time.Hour,
	}
}

// Bus is a watermill publisher/subscriber pair.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
	transport  string

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*Bus)(nil)

// NewBus creates the bus for cfg. For NATS it connects, provisions the
// stream and builds a JetStream publisher and subscriber.
func NewBus(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	d := DefaultConfig()
	if cfg.StreamName == "" {
		cfg.StreamName = d.StreamName
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = d.BufferSize
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = d.ReconnectWait
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = d.AckWait
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = d.MaxAge
	}
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}

	if cfg.NATSURL == "" {
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.BufferSize}, logger)
		return &Bus{publisher: pubSub, subscriber: pubSub, logger: logger, transport: "gochannel"}, nil
	}
	return newNATSBus(ctx, cfg, logger)
}

func newNATSBus(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	if err := ensureStream(ctx, cfg); err != nil {
		return nil, err
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		SubscribersCount: 1,
		AckWaitTimeout:   cfg.AckWait,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(cfg.StreamName),
				natsgo.DeliverNew(),
				natsgo.AckExplicit(),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &Bus{publisher: pub, subscriber: sub, logger: logger, transport: "nats"}, nil
}

// ensureStream creates or updates the stream that captures every shop topic.
func ensureStream(ctx context.Context, cfg Config) error {
	nc, err := natsgo.Connect(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{"shop.>"},
		Retention:  jetstream.LimitsPolicy,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
		MaxAge:     cfg.MaxAge,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// Publish encodes e and publishes it on its topic. The message id doubles as
// the JetStream deduplication id.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Topic(), err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("key", e.Key())
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	if b.transport == "nats" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	err = b.publisher.Publish(e.Topic(), msg)
	metrics.RecordEventPublished(e.Topic(), err)
	return err
}

// Subscriber returns the subscriber side for the router.
func (b *Bus) Subscriber() message.Subscriber {
	return b.subscriber
}

// Transport reports "gochannel" or "nats".
func (b *Bus) Transport() string {
	return b.transport
}

// Close shuts down the publisher and the subscriber. The in-process
// transport shares one instance for both.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := b.publisher.Close()
	if b.transport == "nats" {
		err = errors.Join(err, b.subscriber.Close())
	}
	return err
}

// PublishBestEffort publishes e and logs instead of returning failures. Services
// call it once the store write has committed.
func PublishBestEffort(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), e); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("topic", e.Topic()).
			Str("key", e.Key()).
			Msg("Failed to publish event")
	}
}
