package natsinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// conn is the subset of *nats.Conn used by Sender.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// SMSMessage is the payload consumed by the SMS gateway worker.
type SMSMessage struct {
	To      string    `json:"to"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Sender hands SMS off to a gateway worker through a NATS subject. A send
// succeeds once the server has acknowledged the publish.
type Sender struct {
	conn    conn
	subject string
	log     *slog.Logger
}

func NewSender(url, subject string, log *slog.Logger) (*Sender, error) {
	nc, err := nats.Connect(url, nats.Name("car-service-api"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("connected to NATS", "url", url, "subject", subject)
	return &Sender{conn: nc, subject: subject, log: log}, nil
}

func (s *Sender) SendSMS(ctx context.Context, to, message string) error {
	data, err := json.Marshal(SMSMessage{To: to, Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal sms: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish sms: %w", err)
	}
	flushCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("failed to flush sms publish: %w", err)
	}
	s.log.Debug("sms published", "subject", s.subject)
	return nil
}

func (s *Sender) Close() { s.conn.Close() }
