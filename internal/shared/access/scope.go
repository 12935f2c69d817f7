// Package access resolves an authenticated actor into the visibility rule
// applied to borrowing records, both for mutations and for list queries.
package access

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Actor is the identity performing an operation, taken from the access token.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owned is anything that records the actor who created it.
type Owned interface {
	OwnerID() uuid.UUID
}

// Scope is either Unrestricted or OwnedBy a single actor.
type Scope struct {
	unrestricted bool
	ownerID      uuid.UUID
}

func Unrestricted() Scope { return Scope{unrestricted: true} }

func OwnedBy(actorID uuid.UUID) Scope { return Scope{ownerID: actorID} }

// ScopeFor gives admins every record and everyone else only their own.
func ScopeFor(actor Actor) Scope {
	if actor.IsAdmin() {
		return Unrestricted()
	}
	return OwnedBy(actor.ID)
}

func (s Scope) IsUnrestricted() bool { return s.unrestricted }

// OwnerID returns the owner this scope is restricted to, if any.
func (s Scope) OwnerID() (uuid.UUID, bool) {
	if s.unrestricted {
		return uuid.Nil, false
	}
	return s.ownerID, true
}

func (s Scope) Authorize(record Owned) bool {
	if s.unrestricted {
		return true
	}
	return record.OwnerID() == s.ownerID
}

// FilterPredicate is the in-memory form of SQLFilter.
func (s Scope) FilterPredicate() func(Owned) bool {
	return s.Authorize
}

// SQLFilter renders the scope as a WHERE fragment on column using the
// positional placeholder $argPos. Unrestricted scopes render nothing.
func (s Scope) SQLFilter(column string, argPos int) (string, []any) {
	if s.unrestricted {
		return "", nil
	}
	return fmt.Sprintf("%s = $%d", column, argPos), []any{s.ownerID}
}

func (s Scope) String() string {
	if s.unrestricted {
		return "unrestricted"
	}
	return "owned_by:" + s.ownerID.String()
}
