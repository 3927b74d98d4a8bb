// Package gateway delivers rendered emails through the outbound mail
// gateway. Delivery is attempted exactly once per call; retries and queueing
// are the gateway's problem, not this service's.
package gateway

import (
	"context"
	"fmt"
)

// Email is one rendered message addressed to a single recipient.
type Email struct {
	To            string
	Subject       string
	HTMLBody      string
	TextBody      string
	Tag           string
	FromAddress   string // overrides the configured default when set
	MessageStream string
}

// Sender delivers a single email. Success or failure is binary; a returned
// error means the message was not accepted by the gateway.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// DeliveryError is a non-2xx response from the mail gateway.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("postmark send failed (%d): %s", e.StatusCode, e.Body)
}
