// Package messaging provides a NATS client wrapper for the moderation
// service. It handles connection lifecycle, subject-based subscriptions,
// and convenience methods for the filter-check and suspension channels.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns used between the messaging subsystem and the
// moderation service.
const (
	SubjectFilterCheck  = "filter.check"
	SubjectFilterResult = "filter.result"        // + .<message_id>
	SubjectSuspended    = "moderation.suspended" // threshold crossings
)

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "moderation",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a
// ready client. It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// SubscribeFilterCheck subscribes to incoming filter-check requests.
func (c *NATSClient) SubscribeFilterCheck(handler func(data []byte)) error {
	return c.Subscribe(SubjectFilterCheck, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishFilterResult publishes a decision to filter.result.<messageID>.
func (c *NATSClient) PublishFilterResult(messageID string, data []byte) error {
	return c.Publish(SubjectFilterResult+"."+messageID, data)
}

// PublishSuspension publishes a suspension event for the notification and
// user-management systems.
func (c *NATSClient) PublishSuspension(data []byte) error {
	return c.Publish(SubjectSuspended, data)
}

// Close unsubscribes everything and drains the connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	for key, sub := range c.subs {
		sub.Unsubscribe()
		delete(c.subs, key)
	}
	c.mu.Unlock()

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] drain error: %v", err)
	}
}
