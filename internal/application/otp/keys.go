package otp

import (
	"fmt"

	"github.com/go-carservice-api/internal/domain"
)

func codeKey(phone string, purpose domain.Purpose) string {
	return fmt.Sprintf("otp:%s:%s", purpose, phone)
}

func counterKey(phone string, purpose domain.Purpose) string {
	return fmt.Sprintf("otp_requests_count:%s:%s", purpose, phone)
}

func pendingKey(kind domain.ActorKind, phone string) string {
	return fmt.Sprintf("pending_%s:%s", kind, phone)
}
