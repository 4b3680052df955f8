package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/cybersturmer/pmdragon-core-api/internal/events"
)

// EmailQueue is the slice of the message-queue publisher the services
// need: hand an email job to the worker.
type EmailQueue interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// LiveEvents fans entity changes out to connected frontends.
type LiveEvents interface {
	Publish(ctx context.Context, workspaceID int64, e events.Event)
}

// newRequestKey generates the random key emailed in registration,
// invitation and forgot-password links.
func newRequestKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}
