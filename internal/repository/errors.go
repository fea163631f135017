// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to tell
// failure scenarios apart without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

// ErrInvalidToken is returned when no account holds a reset token.
var ErrInvalidToken = errors.New("invalid reset token")

// ErrTokenExpired is returned when a reset token was found but its expiry
// has passed.  The token has been cleared by the time this is returned.
var ErrTokenExpired = errors.New("reset token expired")

// MySQL server error numbers inspected by the repositories.
const (
	errDupEntry        = 1062
	errLockDeadlock    = 1213
	errNoReferencedRow = 1452
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlErrNumber(err) == errDupEntry }

func isDeadlock(err error) bool { return mysqlErrNumber(err) == errLockDeadlock }

func isMissingParent(err error) bool { return mysqlErrNumber(err) == errNoReferencedRow }
