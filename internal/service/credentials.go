package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/repository"
	"github.com/iliyamo/fair-rice-portal/internal/utils"
)

// ResetTokenTTL is how long an issued reset token stays redeemable.
const ResetTokenTTL = time.Hour

// AccountStore is the subset of the admin repository the credential
// service needs.
type AccountStore interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, username, passwordHash string) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.Account, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	SetResetToken(ctx context.Context, id uint64, token string, expiry time.Time) error
	RedeemResetToken(ctx context.Context, token, newHash string, now time.Time) error
}

// TokenConfig controls access token issuance and password hashing.
type TokenConfig struct {
	Secret     string
	TTLMinutes int
	BcryptCost int
}

// Credentials manages admin logins, password changes and reset tokens.
type Credentials struct {
	accounts AccountStore
	cfg      TokenConfig
	log      *zap.Logger

	Now           func() time.Time
	NewResetToken func() string
}

func NewCredentials(accounts AccountStore, cfg TokenConfig, log *zap.Logger) *Credentials {
	return &Credentials{
		accounts:      accounts,
		cfg:           cfg,
		log:           log.Named("credentials"),
		Now:           func() time.Time { return time.Now().UTC() },
		NewResetToken: utils.NewResetToken,
	}
}

// Login checks username and password and issues an access token.  An
// unknown user and a wrong password are indistinguishable to the caller.
func (s *Credentials) Login(ctx context.Context, username, password string) (utils.AccessToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return utils.AccessToken{}, invalid("username and password are required")
	}
	a, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.AccessToken{}, withKind(ErrAuthMismatch, "invalid credentials")
	}
	if err != nil {
		return utils.AccessToken{}, err
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return utils.AccessToken{}, withKind(ErrAuthMismatch, "invalid credentials")
	}
	if utils.NeedsRehash(a.PasswordHash, s.cfg.BcryptCost) {
		s.rehash(ctx, a, password)
	}
	return utils.NewAccessToken(s.cfg.Secret, a.Username, model.RoleAdmin, s.cfg.TTLMinutes, s.Now())
}

// rehash upgrades a stored hash after BCRYPT_COST changed.  Failures are
// logged and do not fail the login.
func (s *Credentials) rehash(ctx context.Context, a model.Account, password string) {
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err == nil {
		err = s.accounts.UpdatePassword(ctx, a.ID, hash)
	}
	if err != nil {
		s.log.Warn("password rehash failed", zap.String("username", a.Username), zap.Error(err))
	}
}

// Principal loads the principal for username, failing with ErrNotFound if
// the account no longer exists.
func (s *Credentials) Principal(ctx context.Context, username string) (model.Principal, error) {
	a, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Principal{}, withKind(ErrNotFound, "Admin user not found")
	}
	if err != nil {
		return model.Principal{}, err
	}
	return model.NewPrincipal(a), nil
}

// ChangePassword replaces the password of username after checking the old
// one.
func (s *Credentials) ChangePassword(ctx context.Context, username, oldPassword, newPassword, confirm string) error {
	a, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return withKind(ErrNotFound, "Admin user not found")
	}
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(a.PasswordHash, oldPassword) {
		return withKind(ErrAuthMismatch, "Incorrect old password.")
	}
	if newPassword != confirm {
		return invalid("New passwords do not match.")
	}
	if strings.TrimSpace(newPassword) == "" {
		return invalid("New password must not be blank.")
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, a.ID, hash)
}

// IssueResetToken stores a fresh reset token valid for ResetTokenTTL on
// username and returns it.  Any earlier token is replaced.
func (s *Credentials) IssueResetToken(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	a, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", withKind(ErrNotFound, "Admin user not found with username: %s", username)
	}
	if err != nil {
		return "", err
	}
	token := s.NewResetToken()
	if err := s.accounts.SetResetToken(ctx, a.ID, token, s.Now().Add(ResetTokenTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// RedeemResetToken sets a new password for the holder of token and voids
// the token.  An expired token is voided as well and ErrTokenExpired is
// returned.
func (s *Credentials) RedeemResetToken(ctx context.Context, token, newPassword, confirm string) error {
	if newPassword != confirm {
		return invalid("New passwords do not match.")
	}
	if strings.TrimSpace(newPassword) == "" {
		return invalid("New password must not be blank.")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return withKind(ErrInvalidToken, "Invalid password reset token.")
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	switch err := s.accounts.RedeemResetToken(ctx, token, hash, s.Now()); {
	case errors.Is(err, repository.ErrInvalidToken):
		return withKind(ErrInvalidToken, "Invalid password reset token.")
	case errors.Is(err, repository.ErrTokenExpired):
		return withKind(ErrTokenExpired, "Password reset token has expired.")
	default:
		return err
	}
}

// EnsureInitialAdmin creates username with password when no account
// exists yet.  It reports whether an account was created.
func (s *Credentials) EnsureInitialAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.accounts.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return false, err
	}
	if _, err := s.accounts.Create(ctx, username, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("initial admin created", zap.String("username", username))
	return true, nil
}
