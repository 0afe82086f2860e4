// Package push abstracts the device push-notification gateway.
//
// The concrete implementation is Firebase Cloud Messaging, but callers only
// see Gateway, Message and Result: per-token outcomes, aggregate counts,
// and a sentinel error for tokens the provider no longer recognizes.
package push

import (
	"context"
	"errors"
)

// ErrUnregistered marks a token the gateway reports as invalid or no longer
// registered. Token cleanup clears a user's token if and only if the probe
// failed with this error.
var ErrUnregistered = errors.New("push: token not registered")

// Notification is the user-visible part of a push message. A Message with a
// nil Notification is a silent data-only push.
type Notification struct {
	Title string
	Body  string
}

// Message is a provider-neutral push payload.
type Message struct {
	Notification *Notification
	Data         map[string]string
}

// SendResponse is the outcome of one token within a multicast.
type SendResponse struct {
	Token   string
	Success bool
	Error   error
}

// Result aggregates a multicast send. Per-token failures never abort the
// batch; they are recorded here.
type Result struct {
	SuccessCount int            `json:"success_count"`
	FailureCount int            `json:"failure_count"`
	Responses    []SendResponse `json:"-"`
}

// Merge folds another result into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.SuccessCount += other.SuccessCount
	r.FailureCount += other.FailureCount
	r.Responses = append(r.Responses, other.Responses...)
}

// Gateway is the device-push provider.
type Gateway interface {
	// SendMulticast delivers one message to many tokens with independent
	// per-token outcomes. It returns an error only when the batch itself
	// could not be submitted.
	SendMulticast(ctx context.Context, msg Message, tokens []string) (*Result, error)

	// Send delivers one message to a single token. Unregistered-token
	// failures satisfy errors.Is(err, ErrUnregistered).
	Send(ctx context.Context, msg Message, token string) error
}
