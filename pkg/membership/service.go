package membership

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/audit"
	"github.com/dmitrymomot/tenantkit/pkg/token"
)

// Audit actions recorded by the service.
const (
	actionInvitationCreated  = "invitation.created"
	actionInvitationRedeemed = "invitation.redeemed"
	actionInvitationRevoked  = "invitation.revoked"
	actionRoleChanged        = "membership.role_changed"
	actionDeactivated        = "membership.deactivated"
)

// DefaultInvitationTTL is used when Invite is called with a non-positive ttl.
const DefaultInvitationTTL = 72 * time.Hour

// Service implements the membership operations: issuing and redeeming
// invitations, changing roles, and deactivating members. All role checks are
// performed against the Actor the caller supplies, which must describe the
// caller's standing in the tenant being operated on.
type Service struct {
	store    Store
	secret   string
	notifier Notifier
	auditor  *audit.Logger
	log      *slog.Logger
	now      func() time.Time
	ttl      time.Duration
}

// NewService creates a membership service. The secret signs invitation
// redemption tokens and must stay stable across deployments, otherwise
// outstanding invitations become unredeemable.
func NewService(store Store, secret string, opts ...Option) *Service {
	if store == nil {
		panic("membership: store cannot be nil")
	}
	if secret == "" {
		panic("membership: token secret cannot be empty")
	}

	s := &Service{
		store:  store,
		secret: secret,
		log:    slog.New(slog.DiscardHandler),
		now:    time.Now,
		ttl:    DefaultInvitationTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invite creates a pending invitation for the email address and returns it
// together with the plaintext redemption token. The token is never stored;
// only its hash is. The actor must hold at least the admin role and must
// strictly outrank the proposed role, so an admin cannot mint owners.
func (s *Service) Invite(ctx context.Context, actor Actor, tenantID uuid.UUID, email string, role Role, ttl time.Duration) (*Invitation, string, error) {
	if !role.Valid() {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if !actor.Role.AtLeast(RoleAdmin) {
		return nil, "", fmt.Errorf("%w: inviting requires admin", ErrPermissionDenied)
	}
	if !actor.Role.Exceeds(role) {
		return nil, "", fmt.Errorf("%w: proposed role %q is not below actor role %q", ErrPermissionDenied, role, actor.Role)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("invalid invitation email %q", email)
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	inv := &Invitation{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     email,
		Role:      role,
		Status:    InvitationPending,
		ExpiresAt: now.Add(ttl),
		CreatedBy: actor.UserID,
		CreatedAt: now,
	}

	plaintext, err := token.Generate(token.Payload{
		InvitationID: inv.ID,
		TenantID:     inv.TenantID,
		Email:        inv.Email,
		ExpiresAt:    inv.ExpiresAt,
	}, s.secret)
	if err != nil {
		return nil, "", err
	}
	inv.TokenHash = hashToken(plaintext)

	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, "", err
	}

	if s.notifier != nil {
		event := InvitationCreatedEvent{
			InvitationID: inv.ID,
			TenantID:     inv.TenantID,
			Email:        inv.Email,
			Role:         inv.Role,
			Token:        plaintext,
			ExpiresAt:    inv.ExpiresAt,
		}
		// Notification failure must not undo the stored invitation; an admin
		// can always re-issue or surface the token through another channel.
		if err := s.notifier.InvitationCreated(ctx, event); err != nil {
			s.log.ErrorContext(ctx, "invitation notification failed",
				slog.String("invitation_id", inv.ID.String()),
				slog.Any("error", err))
		}
	}

	s.auditLog(ctx, actionInvitationCreated, tenantID, actor.UserID,
		audit.WithMetadata("invitation_id", inv.ID.String()),
		audit.WithMetadata("role", inv.Role.String()))

	return inv, plaintext, nil
}

// Redeem converts a valid invitation token into a membership for userID.
// The claim is a single atomic check-and-set in the store: when the same
// token is redeemed concurrently, exactly one caller gets the membership and
// the rest get ErrAlreadyRedeemed. Errors describe only the token's state,
// never whether the invited email belongs to an existing account.
func (s *Service) Redeem(ctx context.Context, plaintext string, userID uuid.UUID) (*Membership, error) {
	payload, err := token.Parse(plaintext, s.secret)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, ErrInvitationExpired
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}

	m, err := s.store.RedeemInvitation(ctx, payload.InvitationID, hashToken(plaintext), userID, s.now())
	if err != nil {
		return nil, err
	}

	s.auditLog(ctx, actionInvitationRedeemed, m.TenantID, userID,
		audit.WithMetadata("invitation_id", payload.InvitationID.String()),
		audit.WithMetadata("role", m.Role.String()))

	return m, nil
}

// Revoke transitions a pending invitation to revoked. Invitations belonging
// to other tenants are reported as not found rather than forbidden, so ids
// cannot be probed across tenants.
func (s *Service) Revoke(ctx context.Context, actor Actor, tenantID, invitationID uuid.UUID) error {
	if !actor.Role.AtLeast(RoleAdmin) {
		return fmt.Errorf("%w: revoking requires admin", ErrPermissionDenied)
	}

	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.TenantID != tenantID {
		return ErrInvitationNotFound
	}

	if err := s.store.RevokeInvitation(ctx, invitationID, s.now()); err != nil {
		return err
	}

	s.auditLog(ctx, actionInvitationRevoked, tenantID, actor.UserID,
		audit.WithMetadata("invitation_id", invitationID.String()))
	return nil
}

// ChangeRole moves the target member to newRole. The actor must strictly
// outrank both the target's current role and the new role, which rules out
// self-escalation and peer-escalation structurally.
func (s *Service) ChangeRole(ctx context.Context, actor Actor, tenantID, userID uuid.UUID, newRole Role) error {
	if !newRole.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, newRole)
	}
	if actor.UserID == userID {
		return ErrSelfChange
	}

	current, err := s.store.GetMembership(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if !actor.Role.Exceeds(current.Role) || !actor.Role.Exceeds(newRole) {
		return fmt.Errorf("%w: changing %q to %q requires a role above both", ErrPermissionDenied, current.Role, newRole)
	}

	if err := s.store.UpdateMembershipRole(ctx, userID, tenantID, newRole); err != nil {
		return err
	}

	s.auditLog(ctx, actionRoleChanged, tenantID, actor.UserID,
		audit.WithMetadata("target_user_id", userID.String()),
		audit.WithMetadata("old_role", current.Role.String()),
		audit.WithMetadata("new_role", newRole.String()))
	return nil
}

// Deactivate soft-disables the target's membership, keeping history intact.
// The actor must hold admin or above and strictly outrank the target.
func (s *Service) Deactivate(ctx context.Context, actor Actor, tenantID, userID uuid.UUID) error {
	if !actor.Role.AtLeast(RoleAdmin) {
		return fmt.Errorf("%w: deactivating requires admin", ErrPermissionDenied)
	}
	if actor.UserID == userID {
		return ErrSelfChange
	}

	current, err := s.store.GetMembership(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if !actor.Role.Exceeds(current.Role) {
		return fmt.Errorf("%w: target role %q is not below actor role %q", ErrPermissionDenied, current.Role, actor.Role)
	}

	if err := s.store.SetMembershipActive(ctx, userID, tenantID, false); err != nil {
		return err
	}

	s.auditLog(ctx, actionDeactivated, tenantID, actor.UserID,
		audit.WithMetadata("target_user_id", userID.String()))
	return nil
}

// CreateOwner creates the initial owner membership for a freshly onboarded
// tenant. It bypasses role checks and is meant to be called by the
// onboarding flow only, exactly once per tenant.
func (s *Service) CreateOwner(ctx context.Context, tenantID, userID uuid.UUID) (*Membership, error) {
	now := s.now()
	m := &Membership{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      RoleOwner,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateMembership(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) auditLog(ctx context.Context, action string, tenantID, userID uuid.UUID, opts ...audit.EventOption) {
	if s.auditor == nil {
		return
	}
	opts = append(opts, audit.WithTenant(tenantID), audit.WithUser(userID))
	if err := s.auditor.Log(ctx, action, opts...); err != nil {
		s.log.ErrorContext(ctx, "audit log failed",
			slog.String("action", action),
			slog.Any("error", err))
	}
}

// hashToken derives the storable fingerprint of a redemption token.
// Tokens are high-entropy, so an unsalted hash is sufficient for lookup
// without making the database a source of redeemable tokens.
func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
