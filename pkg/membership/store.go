package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists memberships and invitations. Implementations must make
// RedeemInvitation an atomic check-and-set: of any number of concurrent
// redemption attempts for the same invitation, exactly one may succeed.
type Store interface {
	// GetMembership returns the membership for the (user, tenant) pair,
	// active or not. Returns ErrMembershipNotFound if none exists.
	GetMembership(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error)

	// ListActiveMemberships returns all active memberships held by the user.
	ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error)

	// CreateMembership inserts a new membership row. Returns
	// ErrMembershipExists when the (user, tenant) pair already has one.
	CreateMembership(ctx context.Context, m *Membership) error

	// UpdateMembershipRole sets the member's role.
	// Returns ErrMembershipNotFound if no membership exists.
	UpdateMembershipRole(ctx context.Context, userID, tenantID uuid.UUID, role Role) error

	// SetMembershipActive flips the membership's active flag.
	// Returns ErrMembershipNotFound if no membership exists.
	SetMembershipActive(ctx context.Context, userID, tenantID uuid.UUID, active bool) error

	// CreateInvitation inserts a new pending invitation.
	CreateInvitation(ctx context.Context, inv *Invitation) error

	// GetInvitation returns the invitation by id.
	// Returns ErrInvitationNotFound if none exists.
	GetInvitation(ctx context.Context, id uuid.UUID) (*Invitation, error)

	// ListPendingInvitations returns pending invitations for the tenant.
	ListPendingInvitations(ctx context.Context, tenantID uuid.UUID) ([]Invitation, error)

	// RedeemInvitation atomically claims the pending, unexpired invitation
	// matching (id, tokenHash), transitions it to accepted, and creates (or
	// reactivates) the membership for userID with the invited role. Failure
	// modes: ErrAlreadyRedeemed, ErrInvitationExpired, ErrInvitationRevoked,
	// ErrInvitationNotFound.
	RedeemInvitation(ctx context.Context, id uuid.UUID, tokenHash string, userID uuid.UUID, now time.Time) (*Membership, error)

	// RevokeInvitation transitions a pending invitation to revoked. The same
	// failure taxonomy as RedeemInvitation applies to non-pending rows.
	RevokeInvitation(ctx context.Context, id uuid.UUID, now time.Time) error
}
