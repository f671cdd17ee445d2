package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is where session events are published when none is configured.
const DefaultSubject = "pomotaro.events"

// publisher is the part of *nats.Conn the notifier needs.
type publisher interface {
	Publish(subj string, data []byte) error
}

// Message is the JSON payload published for every event.
type Message struct {
	Kind  Kind      `json:"kind"`
	Title string    `json:"title"`
	Body  string    `json:"body,omitempty"`
	At    time.Time `json:"at"`
}

// NATSNotifier publishes events to a NATS subject so home automation,
// status bars or other machines can react to finished sessions.
type NATSNotifier struct {
	conn    *nats.Conn
	pub     publisher
	subject string
	now     func() time.Time
}

// NewNATSNotifier connects to url.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url, nats.Name("pomotaro"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	n := newNATSNotifier(conn, subject)
	n.conn = conn
	slog.Info("NATS notifier connected", slog.String("url", url), slog.String("subject", n.subject))
	return n, nil
}

func newNATSNotifier(pub publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{pub: pub, subject: subject, now: time.Now}
}

func (n *NATSNotifier) Notify(_ context.Context, ev Event) error {
	data, err := json.Marshal(Message{Kind: ev.Kind, Title: ev.Title, Body: ev.Body, At: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.pub.Publish(n.subject+"."+string(ev.Kind), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
