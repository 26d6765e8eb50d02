package membership_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantkit/pkg/membership"
)

func TestRoleValid(t *testing.T) {
	t.Parallel()

	for _, role := range []membership.Role{
		membership.RoleReadonly,
		membership.RoleUser,
		membership.RoleManager,
		membership.RoleAdmin,
		membership.RoleOwner,
	} {
		assert.True(t, role.Valid(), role.String())
	}

	assert.False(t, membership.Role("").Valid())
	assert.False(t, membership.Role("root").Valid())
	assert.False(t, membership.Role("Admin").Valid())
}

func TestRoleOrdering(t *testing.T) {
	t.Parallel()

	assert.True(t, membership.RoleOwner.AtLeast(membership.RoleAdmin))
	assert.True(t, membership.RoleAdmin.AtLeast(membership.RoleAdmin))
	assert.False(t, membership.RoleManager.AtLeast(membership.RoleAdmin))

	assert.True(t, membership.RoleAdmin.Exceeds(membership.RoleManager))
	assert.False(t, membership.RoleAdmin.Exceeds(membership.RoleAdmin))
	assert.False(t, membership.RoleUser.Exceeds(membership.RoleAdmin))

	// Unknown roles never satisfy a threshold.
	assert.False(t, membership.Role("root").AtLeast(membership.RoleReadonly))
	assert.False(t, membership.Role("root").Exceeds(membership.RoleReadonly))
}

func TestRoleWritable(t *testing.T) {
	t.Parallel()

	assert.False(t, membership.RoleReadonly.Writable())
	assert.True(t, membership.RoleUser.Writable())
	assert.True(t, membership.RoleOwner.Writable())
	assert.False(t, membership.Role("root").Writable())
}
