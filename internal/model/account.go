package model

import "time"

// RoleAdmin is the only role the portal knows about.
const RoleAdmin = "ADMIN"

// Account represents a row in the `admin_users` table.  ResetToken and
// ResetTokenExpiry are either both set or both nil.
//
// Fields:
//  ID               – primary key identifier.
//  Username         – unique login name.
//  PasswordHash     – bcrypt hashed password.
//  ResetToken       – pending single-use reset token (nullable).
//  ResetTokenExpiry – instant after which ResetToken is void (nullable).
type Account struct {
	ID               uint64     // admin_users.id
	Username         string     // admin_users.username
	PasswordHash     string     // admin_users.password_hash
	ResetToken       *string    // admin_users.reset_token
	ResetTokenExpiry *time.Time // admin_users.reset_token_expiry
}

// HasResetToken reports whether a reset token is pending.
func (a Account) HasResetToken() bool {
	return a.ResetToken != nil && a.ResetTokenExpiry != nil
}

// ResetTokenExpired reports whether the pending token is no longer usable
// at now.  An account without a token counts as expired.
func (a Account) ResetTokenExpired(now time.Time) bool {
	if !a.HasResetToken() {
		return true
	}
	return !now.Before(*a.ResetTokenExpiry)
}

// Principal is the authentication view of an account.  It is derived from
// the account and never stored.
type Principal struct {
	Username    string
	Authorities []string
	Enabled     bool
	Locked      bool
}

// NewPrincipal adapts an account into its principal.
func NewPrincipal(a Account) Principal {
	return Principal{
		Username:    a.Username,
		Authorities: []string{"ROLE_" + RoleAdmin},
		Enabled:     true,
		Locked:      false,
	}
}

// HasAuthority reports whether the principal carries the named authority.
func (p Principal) HasAuthority(name string) bool {
	for _, a := range p.Authorities {
		if a == name {
			return true
		}
	}
	return false
}
