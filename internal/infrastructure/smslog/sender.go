// Package smslog provides an SMS sender that writes messages to the log.
// It exists for local development and is refused in production by config validation.
package smslog

import (
	"context"
	"log/slog"
)

type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) SendSMS(_ context.Context, to, message string) error {
	s.log.Info("sms (development sender)", "to", to, "message", message)
	return nil
}
