// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError marks input the caller can correct. Handlers map it to
// 400 and its message is safe to echo to clients.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func invalidf(format string, args ...any) error {
	return ValidationError(fmt.Sprintf(format, args...))
}

// ErrInvalidCredentials is returned for any authentication failure. It
// deliberately carries no detail about which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrProvider is returned when the payment provider rejects or fails a
// request. Handlers map it to 502 with a generic message.
var ErrProvider = errors.New("payment provider error")

// ErrInvalidEvent is returned for webhook payloads that fail signature
// verification or cannot be decoded. Handlers map it to 400 so the provider
// does not retry.
var ErrInvalidEvent = errors.New("invalid webhook event")

// normalizeEmail lowercases and trims an address.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
