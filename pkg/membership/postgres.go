package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
)

// PostgresStore persists memberships and invitations in PostgreSQL.
// Invitation redemption is a conditional UPDATE plus a membership upsert in
// one transaction, so concurrent redeemers of the same token serialize on
// the invitation row and exactly one claim succeeds.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("membership: pgx pool cannot be nil")
	}
	return &PostgresStore{pool: pool}
}

const membershipColumns = "id, tenant_id, user_id, role, is_active, created_at, updated_at"

func scanMembership(row pgx.Row) (*Membership, error) {
	var m Membership
	var role string
	if err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &role, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Role = Role(role)
	return &m, nil
}

func (s *PostgresStore) GetMembership(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND tenant_id = $2`,
		userID, tenantID)

	m, err := scanMembership(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND is_active ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("list memberships: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateMembership(ctx context.Context, m *Membership) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO memberships (`+membershipColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.TenantID, m.UserID, m.Role.String(), m.Active, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrMembershipExists
		}
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateMembershipRole(ctx context.Context, userID, tenantID uuid.UUID, role Role) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE memberships SET role = $3, updated_at = now() WHERE user_id = $1 AND tenant_id = $2`,
		userID, tenantID, role.String())
	if err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (s *PostgresStore) SetMembershipActive(ctx context.Context, userID, tenantID uuid.UUID, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE memberships SET is_active = $3, updated_at = now() WHERE user_id = $1 AND tenant_id = $2`,
		userID, tenantID, active)
	if err != nil {
		return fmt.Errorf("set membership active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

const invitationColumns = "id, tenant_id, email, role, token_hash, status, expires_at, created_by, created_at, accepted_at, accepted_by"

func scanInvitation(row pgx.Row) (*Invitation, error) {
	var inv Invitation
	var role, status string
	if err := row.Scan(&inv.ID, &inv.TenantID, &inv.Email, &role, &inv.TokenHash, &status,
		&inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt, &inv.AcceptedAt, &inv.AcceptedBy); err != nil {
		return nil, err
	}
	inv.Role = Role(role)
	inv.Status = InvitationStatus(status)
	return &inv, nil
}

func (s *PostgresStore) CreateInvitation(ctx context.Context, inv *Invitation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invitations (`+invitationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		inv.ID, inv.TenantID, inv.Email, inv.Role.String(), inv.TokenHash, string(inv.Status),
		inv.ExpiresAt, inv.CreatedBy, inv.CreatedAt, inv.AcceptedAt, inv.AcceptedBy)
	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetInvitation(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)

	inv, err := scanInvitation(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *PostgresStore) ListPendingInvitations(ctx context.Context, tenantID uuid.UUID) ([]Invitation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE tenant_id = $1 AND status = 'pending' ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("list invitations: %w", err)
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RedeemInvitation(ctx context.Context, id uuid.UUID, tokenHash string, userID uuid.UUID, now time.Time) (*Membership, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("redeem invitation: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	// The conditional UPDATE is the single atomic claim: only one transaction
	// can move the row out of pending.
	var tenantID uuid.UUID
	var role string
	err = tx.QueryRow(ctx,
		`UPDATE invitations
		 SET status = 'accepted', accepted_at = $3, accepted_by = $4
		 WHERE id = $1 AND token_hash = $2 AND status = 'pending' AND expires_at > $3
		 RETURNING tenant_id, role`,
		id, tokenHash, now, userID).Scan(&tenantID, &role)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, s.classifyClaimFailure(ctx, id, tokenHash, now)
		}
		return nil, fmt.Errorf("redeem invitation: %w", err)
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO memberships (id, tenant_id, user_id, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, true, $5, $5)
		 ON CONFLICT (tenant_id, user_id)
		 DO UPDATE SET role = EXCLUDED.role, is_active = true, updated_at = EXCLUDED.updated_at
		 RETURNING `+membershipColumns,
		uuid.New(), tenantID, userID, role, now)

	m, err := scanMembership(row)
	if err != nil {
		return nil, fmt.Errorf("redeem invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("redeem invitation: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) RevokeInvitation(ctx context.Context, id uuid.UUID, now time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE invitations SET status = 'revoked' WHERE id = $1 AND status = 'pending' AND expires_at > $2`,
		id, now)
	if err != nil {
		return fmt.Errorf("revoke invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyClaimFailure(ctx, id, "", now)
	}
	return nil
}

// classifyClaimFailure inspects the invitation row after a failed claim and
// maps its state to the matching error. Overdue pending rows are lazily
// marked expired on the way.
func (s *PostgresStore) classifyClaimFailure(ctx context.Context, id uuid.UUID, tokenHash string, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE invitations SET status = 'expired' WHERE id = $1 AND status = 'pending' AND expires_at <= $2`,
		id, now)
	if err != nil {
		return fmt.Errorf("expire invitation: %w", err)
	}

	var storedHash, status string
	err = s.pool.QueryRow(ctx,
		`SELECT token_hash, status FROM invitations WHERE id = $1`, id).Scan(&storedHash, &status)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("inspect invitation: %w", err)
	}
	if tokenHash != "" && storedHash != tokenHash {
		return ErrInvitationNotFound
	}

	switch InvitationStatus(status) {
	case InvitationAccepted:
		return ErrAlreadyRedeemed
	case InvitationRevoked:
		return ErrInvitationRevoked
	case InvitationExpired:
		return ErrInvitationExpired
	default:
		// Pending but unclaimable means the conditional update raced with a
		// concurrent writer; report it as already redeemed.
		return errors.Join(ErrAlreadyRedeemed, errors.New("invitation claim lost race"))
	}
}
