package registry

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/HexSyn0x0/Synaptix/common"
)

// Role is a privileged capability grantable to a caller.
type Role string

const (
	// RoleAdmin may overwrite reputation, status and configuration.
	RoleAdmin Role = "admin"
	// RoleSlasher may slash nodes and drive the manager's sweeps.
	RoleSlasher Role = "slasher"
	// RolePauser may pause and unpause the registry entry points.
	RolePauser Role = "pauser"
)

// AuthContext carries the caller identity and its granted capabilities
// into every operation. Capability membership is checked before any
// domain precondition is evaluated.
type AuthContext struct {
	Caller common.Address
	roles  mapset.Set
}

// NewAuthContext builds an AuthContext for caller with the given roles.
// Self-service callers pass no roles.
func NewAuthContext(caller common.Address, roles ...Role) AuthContext {
	set := mapset.NewThreadUnsafeSet()
	for _, r := range roles {
		set.Add(r)
	}
	return AuthContext{Caller: caller, roles: set}
}

// Has reports whether the context carries the given role.
func (a AuthContext) Has(role Role) bool {
	return a.roles != nil && a.roles.Contains(role)
}

// Roles returns the granted roles, for logging.
func (a AuthContext) Roles() []Role {
	if a.roles == nil {
		return nil
	}
	var out []Role
	for r := range a.roles.Iter() {
		out = append(out, r.(Role))
	}
	return out
}
