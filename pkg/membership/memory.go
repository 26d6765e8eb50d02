package membership

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and prototyping. All methods
// are safe for concurrent use; RedeemInvitation performs its check-and-set
// under a single lock so at most one concurrent redeemer can win.
type MemoryStore struct {
	mu          sync.Mutex
	memberships map[memberKey]*Membership
	invitations map[uuid.UUID]*Invitation
}

type memberKey struct {
	userID   uuid.UUID
	tenantID uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		memberships: make(map[memberKey]*Membership),
		invitations: make(map[uuid.UUID]*Invitation),
	}
}

func (s *MemoryStore) GetMembership(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[memberKey{userID, tenantID}]
	if !ok {
		return nil, ErrMembershipNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Membership
	for key, m := range s.memberships {
		if key.userID == userID && m.Active {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateMembership(ctx context.Context, m *Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{m.UserID, m.TenantID}
	if _, exists := s.memberships[key]; exists {
		return ErrMembershipExists
	}
	cp := *m
	s.memberships[key] = &cp
	return nil
}

func (s *MemoryStore) UpdateMembershipRole(ctx context.Context, userID, tenantID uuid.UUID, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[memberKey{userID, tenantID}]
	if !ok {
		return ErrMembershipNotFound
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SetMembershipActive(ctx context.Context, userID, tenantID uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[memberKey{userID, tenantID}]
	if !ok {
		return ErrMembershipNotFound
	}
	m.Active = active
	m.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) CreateInvitation(ctx context.Context, inv *Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *inv
	s.invitations[inv.ID] = &cp
	return nil
}

func (s *MemoryStore) GetInvitation(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *MemoryStore) ListPendingInvitations(ctx context.Context, tenantID uuid.UUID) ([]Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Invitation
	for _, inv := range s.invitations {
		if inv.TenantID == tenantID && inv.Status == InvitationPending {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *MemoryStore) RedeemInvitation(ctx context.Context, id uuid.UUID, tokenHash string, userID uuid.UUID, now time.Time) (*Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok || inv.TokenHash != tokenHash {
		return nil, ErrInvitationNotFound
	}

	if err := claimError(inv, now); err != nil {
		return nil, err
	}

	inv.Status = InvitationAccepted
	acceptedAt := now
	inv.AcceptedAt = &acceptedAt
	acceptedBy := userID
	inv.AcceptedBy = &acceptedBy

	key := memberKey{userID, inv.TenantID}
	if existing, exists := s.memberships[key]; exists {
		existing.Role = inv.Role
		existing.Active = true
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}

	m := &Membership{
		ID:        uuid.New(),
		TenantID:  inv.TenantID,
		UserID:    userID,
		Role:      inv.Role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.memberships[key] = m
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) RevokeInvitation(ctx context.Context, id uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return ErrInvitationNotFound
	}
	if err := claimError(inv, now); err != nil {
		return err
	}
	inv.Status = InvitationRevoked
	return nil
}

// claimError maps a non-claimable invitation to its failure, lazily marking
// overdue pending rows as expired.
func claimError(inv *Invitation, now time.Time) error {
	switch inv.Status {
	case InvitationAccepted:
		return ErrAlreadyRedeemed
	case InvitationRevoked:
		return ErrInvitationRevoked
	case InvitationExpired:
		return ErrInvitationExpired
	}
	if inv.Expired(now) {
		inv.Status = InvitationExpired
		return ErrInvitationExpired
	}
	return nil
}
