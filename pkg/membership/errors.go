package membership

import "errors"

var (
	// ErrPermissionDenied is returned when the acting member's role does not
	// allow the requested operation.
	ErrPermissionDenied = errors.New("insufficient role for this operation")

	// ErrInvalidRole is returned for roles outside the known ladder.
	ErrInvalidRole = errors.New("invalid role")

	// ErrSelfChange is returned when a member tries to change or deactivate
	// their own membership.
	ErrSelfChange = errors.New("cannot change own membership")

	// ErrMembershipNotFound is returned when no membership exists for the
	// (user, tenant) pair.
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrMembershipExists is returned when creating a membership that would
	// duplicate an existing (user, tenant) pair.
	ErrMembershipExists = errors.New("membership already exists")

	// ErrInvitationNotFound is returned when no invitation matches the token.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrAlreadyRedeemed is returned when the invitation token was already
	// accepted, including by a concurrent redeemer that won the race.
	ErrAlreadyRedeemed = errors.New("invitation already redeemed")

	// ErrInvitationExpired is returned when the invitation's expiry has passed.
	ErrInvitationExpired = errors.New("invitation expired")

	// ErrInvitationRevoked is returned when the invitation was revoked by an admin.
	ErrInvitationRevoked = errors.New("invitation revoked")

	// ErrInvalidToken is returned when the redemption token fails verification.
	ErrInvalidToken = errors.New("invalid invitation token")
)
