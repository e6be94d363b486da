package auth

import (
	"fmt"
	"slices"

	"oneshelf-backend/internal/domain/errs"
)

type Role string

const (
	RoleUser          Role = "user"
	RoleLibrarian     Role = "librarian"
	RoleHeadLibrarian Role = "headLibrarian"
	RoleAdmin         Role = "admin"
)

var (
	// Patrons is every role allowed to borrow.
	Patrons = []Role{RoleUser, RoleLibrarian, RoleHeadLibrarian, RoleAdmin}
	// Staff is every role that acts on behalf of one library.
	Staff = []Role{RoleLibrarian, RoleHeadLibrarian}
)

func (r Role) Valid() bool { return slices.Contains(Patrons, r) }

// ScopedToLibrary reports whether the role only makes sense with a library id.
func (r Role) ScopedToLibrary() bool { return slices.Contains(Staff, r) }

// Claim is the verified identity attached to one request. It is trusted as-is.
type Claim struct {
	UserID    uint64
	Username  string
	Role      Role
	LibraryID *uint64
}

// Holds reports whether the caller has one of roles.
func (c Claim) Holds(roles ...Role) bool {
	return c.UserID != 0 && slices.Contains(roles, c.Role)
}

// Library returns the caller's library scope.
func (c Claim) Library() (uint64, bool) {
	if c.LibraryID == nil || *c.LibraryID == 0 {
		return 0, false
	}
	return *c.LibraryID, true
}

// Require fails with ErrForbidden unless the caller holds one of roles, and
// with ErrUnauthorized when there is no caller at all.
func (c Claim) Require(roles ...Role) error {
	if c.UserID == 0 {
		return errs.ErrUnauthorized
	}
	if !c.Holds(roles...) {
		return fmt.Errorf("%w: role %q not allowed", errs.ErrForbidden, c.Role)
	}
	return nil
}

// RequireStaff is Require(Staff...) plus a library scope, which it returns.
func (c Claim) RequireStaff() (uint64, error) {
	if err := c.Require(Staff...); err != nil {
		return 0, err
	}
	lib, ok := c.Library()
	if !ok {
		return 0, fmt.Errorf("%w: %s claim without library", errs.ErrForbidden, c.Role)
	}
	return lib, nil
}
