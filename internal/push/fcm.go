package push

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCM sends at most this many tokens per multicast call; larger audiences
// are chunked.
const multicastBatchSize = 500

// FCMGateway delivers pushes through Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

var _ Gateway = (*FCMGateway)(nil)

// NewFCMGateway initializes the Firebase app from a service-account file.
// Callers are expected to treat a construction error as a degraded mode
// (run with a nil gateway), not a startup failure.
func NewFCMGateway(ctx context.Context, credentialsFile string) (*FCMGateway, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("push: no Firebase credentials configured")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("push: firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("push: messaging client: %w", err)
	}
	return &FCMGateway{client: client}, nil
}

func (g *FCMGateway) SendMulticast(ctx context.Context, msg Message, tokens []string) (*Result, error) {
	result := &Result{}
	for start := 0; start < len(tokens); start += multicastBatchSize {
		end := start + multicastBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		resp, err := g.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: toFCMNotification(msg.Notification),
			Data:         msg.Data,
		})
		if err != nil {
			return result, fmt.Errorf("push: multicast: %w", err)
		}

		chunk := &Result{
			SuccessCount: resp.SuccessCount,
			FailureCount: resp.FailureCount,
		}
		for i, r := range resp.Responses {
			sr := SendResponse{Token: batch[i], Success: r.Success}
			if r.Error != nil {
				sr.Error = mapFCMError(r.Error)
			}
			chunk.Responses = append(chunk.Responses, sr)
		}
		result.Merge(chunk)
	}
	return result, nil
}

func (g *FCMGateway) Send(ctx context.Context, msg Message, token string) error {
	_, err := g.client.Send(ctx, &messaging.Message{
		Token:        token,
		Notification: toFCMNotification(msg.Notification),
		Data:         msg.Data,
	})
	if err != nil {
		return mapFCMError(err)
	}
	return nil
}

func toFCMNotification(n *Notification) *messaging.Notification {
	if n == nil {
		return nil
	}
	return &messaging.Notification{Title: n.Title, Body: n.Body}
}

// mapFCMError folds the provider's dead-token responses into ErrUnregistered
// so callers can branch with errors.Is. INVALID_ARGUMENT also covers
// malformed payloads, so that branch additionally requires the registration
// token to be what was rejected; anything else passes through unchanged.
func mapFCMError(err error) error {
	if messaging.IsUnregistered(err) {
		return fmt.Errorf("%w: %v", ErrUnregistered, err)
	}
	if errorutils.IsInvalidArgument(err) && strings.Contains(err.Error(), "registration token") {
		return fmt.Errorf("%w: %v", ErrUnregistered, err)
	}
	return err
}
