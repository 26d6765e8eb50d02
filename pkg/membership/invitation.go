package membership

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of an invitation. The only
// transitions are out of pending; accepted, expired and revoked are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationExpired, InvitationRevoked:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from the status.
func (s InvitationStatus) Terminal() bool {
	return s.Valid() && s != InvitationPending
}

// Invitation is a single-use, expiring offer of membership in a tenant.
// Only a hash of the redemption token is stored; the plaintext token is
// returned once at creation time and never persisted.
type Invitation struct {
	ID         uuid.UUID        `json:"id"`
	TenantID   uuid.UUID        `json:"tenant_id"`
	Email      string           `json:"email"`
	Role       Role             `json:"role"`
	TokenHash  string           `json:"-"`
	Status     InvitationStatus `json:"status"`
	ExpiresAt  time.Time        `json:"expires_at"`
	CreatedBy  uuid.UUID        `json:"created_by"`
	CreatedAt  time.Time        `json:"created_at"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
	AcceptedBy *uuid.UUID       `json:"accepted_by,omitempty"`
}

// Expired reports whether the invitation's expiry has passed at the given time.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
