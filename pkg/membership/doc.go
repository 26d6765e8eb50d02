// Package membership manages who belongs to which tenant and with what role.
//
// A membership ties a user to a tenant with a role drawn from a strict
// ladder (readonly < user < manager < admin < owner). Users may belong to
// many tenants at once, but hold at most one membership per tenant.
// Memberships are deactivated, never deleted, so history survives.
//
// New members join through invitations: an admin issues a single-use,
// expiring token for an email address and a proposed role; redeeming the
// token atomically consumes the invitation and creates the membership.
// Concurrent redemption of the same token yields exactly one success.
//
// # Usage
//
//	store := membership.NewMemoryStore()
//	svc := membership.NewService(store, secret,
//		membership.WithNotifier(notifier),
//	)
//
//	inv, token, err := svc.Invite(ctx, actor, tenantID, "new@user.com", membership.RoleUser, 72*time.Hour)
//	if err != nil {
//		// actor lacks admin rights or proposed role is too high
//	}
//
//	// Later, from the signup flow:
//	m, err := svc.Redeem(ctx, token, newUserID)
//
// Role changes are guarded against escalation: the acting member's role must
// strictly exceed both the target's current role and the new role, so nobody
// can promote a peer or themselves.
package membership
