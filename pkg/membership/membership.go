package membership

import (
	"time"

	"github.com/google/uuid"
)

// Membership ties a user to a tenant with a role. At most one membership
// exists per (user, tenant) pair; deactivation flips Active instead of
// deleting the row.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor identifies the caller performing a membership operation together
// with the role they hold in the tenant being operated on. It is typically
// derived from the resolved tenant context by the web layer.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}
