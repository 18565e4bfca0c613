package domain

import "time"

// Built-in roles seeded by migration.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type Role struct {
	ID          string
	Name        string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PermissionNames returns the names of the role's permissions.
func (r Role) PermissionNames() []string {
	out := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		out = append(out, p.Name)
	}
	return out
}

type Permission struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PermissionSet is the resolved permission names of a role.
type PermissionSet map[string]struct{}

func NewPermissionSet(names ...string) PermissionSet {
	s := make(PermissionSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Missing returns the required names not present in s, in the order given.
// An empty result means every requirement is satisfied.
func (s PermissionSet) Missing(required ...string) []string {
	var out []string
	for _, r := range required {
		if !s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}
