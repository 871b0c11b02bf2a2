package auth

import (
	"context"
	"errors"
)

// ErrNotAuthorized is returned by any mutating operation whose caller lacks
// the required role. The operation must leave all state untouched.
var ErrNotAuthorized = errors.New("auth: caller is not authorized")

// Identity is the authenticated caller of an operation, as supplied by the
// host's identity substrate. The core never inspects its contents.
type Identity string

// Anonymous is the zero identity used when the host supplies none.
const Anonymous Identity = ""

type Role string

const (
	// RoleAdmin may manage the catalog and grant roles.
	RoleAdmin Role = "admin"
	// RoleCashier may create and finalize orders and batches.
	RoleCashier Role = "cashier"
)

// RoleStore is the external role/authorization store, consumed as a pure
// predicate. Implementations must not mutate state on lookup.
type RoleStore interface {
	HasRole(ctx context.Context, id Identity, role Role) bool
}
