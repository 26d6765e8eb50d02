package membership

// Role is a member's standing within a single tenant. Roles form a strict
// ladder; comparisons below rely on that total order.
type Role string

const (
	RoleReadonly Role = "readonly"
	RoleUser     Role = "user"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
)

// roleLevels assigns each role its position on the ladder.
// Unknown roles get level -1 and lose every comparison.
var roleLevels = map[Role]int{
	RoleReadonly: 0,
	RoleUser:     1,
	RoleManager:  2,
	RoleAdmin:    3,
	RoleOwner:    4,
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the role's position on the ladder, or -1 for unknown roles.
func (r Role) Level() int {
	level, ok := roleLevels[r]
	if !ok {
		return -1
	}
	return level
}

// AtLeast reports whether the role is equal to or above the other role.
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && other.Valid() && r.Level() >= other.Level()
}

// Exceeds reports whether the role is strictly above the other role.
func (r Role) Exceeds(other Role) bool {
	return r.Valid() && other.Valid() && r.Level() > other.Level()
}

// Writable reports whether the role may perform mutating operations.
// Readonly members can never write, regardless of endpoint.
func (r Role) Writable() bool {
	return r.Valid() && r != RoleReadonly
}

func (r Role) String() string {
	return string(r)
}
