package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the account's role
type UserRole = string

const (
	// RoleUser is a regular account (read own record, mutate own record)
	RoleUser UserRole = "User"
	// RoleAdmin is an administrator (full account management)
	RoleAdmin UserRole = "Admin"
)

// SystemActor is the audit identity used for provisioning done outside any
// HTTP request, e.g. the default admin bootstrap.
const SystemActor = "System"

// AccountStatus is the lifecycle status derived from RevokedAt
type AccountStatus = string

const (
	// StatusActive means the account can authenticate and be operated on
	StatusActive AccountStatus = "active"
	// StatusRevoked means the account was soft deleted; the login stays reserved
	StatusRevoked AccountStatus = "revoked"
)

// User is the account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Login         string     `bun:"login,notnull,unique" json:"login,omitempty"`
	Secret        string     `bun:"secret,notnull" json:"-"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Gender        int        `bun:"gender,notnull" json:"gender"`
	Birthday      *time.Time `bun:"birthday,nullzero" json:"birthday,omitempty"`
	Admin         bool       `bun:"is_admin,notnull" json:"is_admin"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	CreatedBy     string     `bun:"created_by" json:"created_by,omitempty"`
	ModifiedAt    *time.Time `bun:"modified_at,nullzero" json:"modified_at,omitempty"`
	ModifiedBy    string     `bun:"modified_by" json:"modified_by,omitempty"`
	RevokedAt     *time.Time `bun:"revoked_at,nullzero" json:"revoked_at,omitempty"`
	RevokedBy     string     `bun:"revoked_by" json:"revoked_by,omitempty"`
}

// IsActive reports whether the account has not been revoked. Active status is
// always derived from RevokedAt, never stored on its own.
func (u *User) IsActive() bool {
	return u != nil && u.RevokedAt == nil
}

// Status derives the lifecycle status from RevokedAt
func (u *User) Status() AccountStatus {
	if u.IsActive() {
		return StatusActive
	}
	return StatusRevoked
}

// Role maps the admin flag to the role claim
func (u *User) Role() UserRole {
	if u != nil && u.Admin {
		return RoleAdmin
	}
	return RoleUser
}
