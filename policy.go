package users

// Operation names every action the API exposes, for authorization decisions.
type Operation string

const (
	OpCreate        Operation = "account.create"
	OpListActive    Operation = "account.list_active"
	OpGetByLogin    Operation = "account.get_by_login"
	OpGetSelf       Operation = "account.get_self"
	OpListOlderThan Operation = "account.list_older_than"
	OpUpdateProfile Operation = "account.update_profile"
	OpChangeSecret  Operation = "account.change_secret"
	OpChangeLogin   Operation = "account.change_login"
	OpDelete        Operation = "account.delete"
	OpRestore       Operation = "account.restore"
)

// Caller is the authenticated (or anonymous) principal behind a request,
// derived from validated token claims.
type Caller struct {
	Subject       string
	Role          UserRole
	Authenticated bool
}

// AnonymousCaller is the principal behind requests with no usable credential.
func AnonymousCaller() Caller {
	return Caller{Role: RoleUser}
}

// CallerFromClaims builds a Caller from validated claims.
func CallerFromClaims(claims AuthClaims) Caller {
	if claims == nil || claims.Subject() == "" {
		return AnonymousCaller()
	}
	return Caller{
		Subject:       claims.Subject(),
		Role:          claims.Role(),
		Authenticated: true,
	}
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Authenticated && c.Role == RoleAdmin
}

// IsSelf reports whether the caller is operating on their own account.
func (c Caller) IsSelf(targetLogin string) bool {
	return c.Authenticated && c.Subject == targetLogin
}

// Policy decides per operation whether a caller may proceed. Self-or-admin
// operations also need the target's login; admin-only operations ignore it.
type Policy struct{}

// Authorize returns nil when the caller may perform op on targetLogin,
// ErrAuthRequired for anonymous callers, ErrForbidden otherwise. Existence
// and lifecycle checks are not policy concerns; the service orders those
// around this call.
func (Policy) Authorize(caller Caller, op Operation, targetLogin string) error {
	if !caller.Authenticated {
		return ErrAuthRequired
	}

	switch op {
	case OpCreate, OpListActive, OpGetByLogin, OpListOlderThan, OpDelete, OpRestore:
		if !caller.IsAdmin() {
			return ErrForbidden.WithMetadata(map[string]any{
				"operation": string(op),
			})
		}
		return nil

	case OpGetSelf:
		return nil

	case OpUpdateProfile, OpChangeSecret, OpChangeLogin:
		if caller.IsAdmin() || caller.IsSelf(targetLogin) {
			return nil
		}
		return ErrForbidden.WithMetadata(map[string]any{
			"operation": string(op),
			"target":    targetLogin,
		})

	default:
		return ErrForbidden.WithMetadata(map[string]any{
			"operation": string(op),
			"reason":    "unknown operation",
		})
	}
}
