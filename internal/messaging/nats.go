package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Config holds NATS connection settings. An empty URL disables publishing.
type Config struct {
	URL  string
	Name string
}

// NATSPublisher publishes domain events to NATS subjects as JSON payloads.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the configured NATS server. Publishing is
// best-effort: the marketplace never fails a request because an event could
// not be delivered.
func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats: url is required")
	}

	name := cfg.Name
	if name == "" {
		name = "handy-api"
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}

	slog.Info("connected to NATS", "url", cfg.URL)
	return &NATSPublisher{conn: conn}, nil
}

// Publish marshals payload to JSON and publishes it on subject
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("nats: marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats: publish %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection so buffered events flush before shutdown
func (p *NATSPublisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		slog.Warn("NATS drain failed", "error", err)
		p.conn.Close()
	}
}
