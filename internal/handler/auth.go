package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/middleware"
	"github.com/iliyamo/fair-rice-portal/internal/service"
	"github.com/iliyamo/fair-rice-portal/internal/utils"
)

// CredentialService is implemented by *service.Credentials.
type CredentialService interface {
	Login(ctx context.Context, username, password string) (utils.AccessToken, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword, confirm string) error
	IssueResetToken(ctx context.Context, username string) (string, error)
	RedeemResetToken(ctx context.Context, token, newPassword, confirm string) error
}

// AuthHandler bundles dependencies for login and the admin password
// endpoints.
type AuthHandler struct {
	creds CredentialService
	log   *zap.Logger
}

func NewAuthHandler(creds CredentialService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{creds: creds, log: log.Named("auth")}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type forgotPasswordReq struct {
	Username string `json:"username"`
}

type resetPasswordReq struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

const forgotPasswordReply = "If a user with that username exists, a reset token has been generated. Please check the server logs."

// Login: verify credentials and return an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tok, err := h.creds.Login(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, tok)
}

// ChangePassword lets the signed-in admin replace their password.  A wrong
// old password is a 400 here, not a 401: the session itself is valid.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	username := middleware.Username(c)
	if username == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	err := h.creds.ChangePassword(ctx, username, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if errors.Is(err, service.ErrAuthMismatch) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, message{Message: "Password updated successfully!"})
}

// ForgotPassword issues a reset token and writes it to the server log for
// the operator.  The reply never reveals whether the username exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return badRequest(c, "username is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	token, err := h.creds.IssueResetToken(ctx, username)
	switch {
	case err == nil:
		h.log.Warn("password reset token generated", zap.String("username", username), zap.String("token", token))
	case errors.Is(err, service.ErrNotFound):
		h.log.Info("password reset requested for unknown user", zap.String("username", username))
	default:
		h.log.Error("password reset token not issued", zap.String("username", username), zap.Error(err))
	}
	return c.JSON(http.StatusOK, message{Message: forgotPasswordReply})
}

// ResetPassword redeems a reset token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.creds.RedeemResetToken(ctx, req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, message{Message: "Password has been successfully reset. You can now log in with your new password."})
}
