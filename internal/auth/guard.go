package auth

import (
	"errors"
	"fmt"

	"github.com/iliyamo/online-storefront/internal/model"
)

// ErrForbidden is returned when a principal lacks the role or the
// ownership required for an operation.  Handlers translate it into an
// HTTP 403 response, distinct from authentication failures so clients
// can tell "log in again" from "not allowed".
var ErrForbidden = errors.New("forbidden")

// Principal is the resolved identity attached to a request: the user id
// from the token's subject claim plus the role loaded with the account.
type Principal struct {
	ID   uint64
	Role string
}

// roleRank orders the roles CUSTOMER < ADMIN < SUPERADMIN.  Unknown
// roles rank below everything.
func roleRank(role string) int {
	switch role {
	case model.RoleCustomer:
		return 1
	case model.RoleAdmin:
		return 2
	case model.RoleSuperadmin:
		return 3
	default:
		return 0
	}
}

// Elevated reports whether the role bypasses ownership checks.
func Elevated(role string) bool {
	return roleRank(role) >= roleRank(model.RoleAdmin)
}

// AuthorizeRole allows the principal when its role equals or outranks
// the required role.  Pure decision function: no I/O, no side effects.
func AuthorizeRole(p Principal, required string) error {
	if roleRank(p.Role) < roleRank(required) || roleRank(p.Role) == 0 {
		return fmt.Errorf("%w: role", ErrForbidden)
	}
	return nil
}

// Authorize allows the principal to act on a resource owned by ownerID
// when it is the owner itself or holds an elevated role.  This is the
// single ownership decision point; resource handlers must not reimplement
// the check ad hoc.
func Authorize(p Principal, ownerID uint64) error {
	if p.ID == ownerID || Elevated(p.Role) {
		return nil
	}
	return fmt.Errorf("%w: ownership", ErrForbidden)
}
