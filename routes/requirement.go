package routes

import (
	"sort"
	"strings"

	"github.com/maternalcare/portal-core/credential"
)

// Requirement is the access declaration attached to a route: either an explicit
// public marker or a set of permitted roles. The zero value declares nothing,
// which Validate rejects.
type Requirement struct {
	roles  map[credential.Role]struct{}
	public bool
}

// Require declares a route viewable by the given roles.
func Require(roles ...credential.Role) Requirement {
	r := Requirement{roles: make(map[credential.Role]struct{}, len(roles))}
	for _, role := range roles {
		r.roles[role] = struct{}{}
	}
	return r
}

// Public declares a route viewable without any session, such as the login page.
func Public() Requirement {
	return Requirement{public: true}
}

// IsPublic reports whether the route is explicitly public.
func (r Requirement) IsPublic() bool {
	return r.public
}

// Defined reports whether a role set was declared.
func (r Requirement) Defined() bool {
	return len(r.roles) > 0
}

// Includes reports whether the role set permits the given role.
func (r Requirement) Includes(role credential.Role) bool {
	_, ok := r.roles[role]
	return ok
}

// Roles returns the declared role set in stable order.
func (r Requirement) Roles() []credential.Role {
	roles := make([]credential.Role, 0, len(r.roles))
	for role := range r.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

func (r Requirement) String() string {
	if r.public {
		return "public"
	}
	parts := make([]string, 0, len(r.roles))
	for _, role := range r.Roles() {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ", ")
}
