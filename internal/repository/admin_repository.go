package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// AdminRepo persists administrator accounts and their reset tokens.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

const accountColumns = `id, username, password_hash, reset_token, reset_token_expiry`

func scanAccount(row rowScanner) (model.Account, error) {
	var (
		a      model.Account
		token  sql.NullString
		expiry sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &token, &expiry); err != nil {
		return model.Account{}, err
	}
	if token.Valid && expiry.Valid {
		t, e := token.String, expiry.Time
		a.ResetToken, a.ResetTokenExpiry = &t, &e
	}
	return a, nil
}

// Count returns the number of accounts.
func (r *AdminRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n)
	return n, err
}

// Create inserts an account and returns its ID.
func (r *AdminRepo) Create(ctx context.Context, username, passwordHash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO admin_users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches an account by exact username.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	a, err := scanAccount(r.DB.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM admin_users WHERE username = ? LIMIT 1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// UpdatePassword replaces the password hash of account id.
func (r *AdminRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE admin_users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

// SetResetToken stores a reset token and its expiry on account id,
// replacing any previous token.
func (r *AdminRepo) SetResetToken(ctx context.Context, id uint64, token string, expiry time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE admin_users SET reset_token = ?, reset_token_expiry = ? WHERE id = ?`, token, expiry, id)
	return err
}

// RedeemResetToken consumes token: the holder's password hash becomes
// newHash and the token is cleared, all under a row lock.  When no account
// holds the token ErrInvalidToken is returned.  When the token is expired
// at now it is cleared and committed and ErrTokenExpired is returned.
func (r *AdminRepo) RedeemResetToken(ctx context.Context, token, newHash string, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := scanAccount(tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM admin_users WHERE reset_token = ? FOR UPDATE`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}

	expired := a.ResetTokenExpired(now)
	if expired {
		_, err = tx.ExecContext(ctx,
			`UPDATE admin_users SET reset_token = NULL, reset_token_expiry = NULL WHERE id = ?`, a.ID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE admin_users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL WHERE id = ?`, newHash, a.ID)
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	if expired {
		return ErrTokenExpired
	}
	return nil
}
