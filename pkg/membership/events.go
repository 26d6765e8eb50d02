package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvitationCreatedEvent is emitted after an invitation is stored. The token
// is the plaintext redemption token; delivery to the recipient (email etc.)
// is the consumer's concern, not this package's.
type InvitationCreatedEvent struct {
	InvitationID uuid.UUID
	TenantID     uuid.UUID
	Email        string
	Role         Role
	Token        string
	ExpiresAt    time.Time
}

// Notifier receives invitation events. Implementations must not block longer
// than the caller's context allows; a failed notification does not roll back
// the invitation.
type Notifier interface {
	InvitationCreated(ctx context.Context, event InvitationCreatedEvent) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event InvitationCreatedEvent) error

func (f NotifierFunc) InvitationCreated(ctx context.Context, event InvitationCreatedEvent) error {
	return f(ctx, event)
}
