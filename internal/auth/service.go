// Package auth drives the account lifecycle against the remote commerce
// API and keeps the local session in step with it.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ElizabetLu/Online-Tech/internal/api"
	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
	"github.com/ElizabetLu/Online-Tech/pkg/validator"
)

// errorKeyMessages maps the remote API's machine-readable error keys onto
// messages fit for the user.
var errorKeyMessages = map[string]string{
	"errors.email_in_use":         "This email is already in use",
	"errors.invalid_email":        "Please enter a valid email address",
	"errors.invalid_phone_number": "Please enter a valid phone number",
	"errors.password_too_short":   "Password must be at least 8 characters",
	"errors.invalid_avatar":       "The avatar URL could not be loaded",
}

// AuthAPI is the slice of the remote client the auth service needs.
type AuthAPI interface {
	SignUp(ctx context.Context, req api.SignUpRequest) error
	SignIn(ctx context.Context, email, password string) (*domain.AuthTokens, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	VerifyEmail(ctx context.Context, email string) error
	RecoverPassword(ctx context.Context, email string) error
	DeleteAccount(ctx context.Context) error
}

// Service manages sign-up, sign-in and the cached profile.
type Service struct {
	api      AuthAPI
	sessions *session.Manager
	logger   *slog.Logger
}

func NewService(apiClient AuthAPI, sessions *session.Manager, logger *slog.Logger) *Service {
	return &Service{
		api:      apiClient,
		sessions: sessions,
		logger:   logger,
	}
}

// SignUp registers an account. Input is validated locally first; remote
// rejections are translated from the API's error keys into readable
// messages.
func (s *Service) SignUp(ctx context.Context, req api.SignUpRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validator.Validate(req); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if err := s.api.SignUp(ctx, req); err != nil {
		return translateRemoteError(err)
	}
	s.logger.InfoContext(ctx, "account registered", slog.String("email", req.Email))
	return nil
}

// SignIn exchanges credentials for a session. Any stale session state is
// dropped first so a failed attempt cannot leave tokens from a previous
// user behind. Accounts that have not verified their email are rejected
// and the freshly issued tokens are discarded.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	if err := s.sessions.ClearAuth(ctx); err != nil {
		return nil, apperrors.Wrap(err, "clearing previous session")
	}

	tokens, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, translateRemoteError(err)
	}
	if !session.IsValidToken(tokens.AccessToken) || !session.IsValidToken(tokens.RefreshToken) {
		return nil, apperrors.Internal(errors.New("sign-in returned unusable tokens"))
	}
	if err := s.sessions.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return nil, apperrors.Wrap(err, "storing tokens")
	}

	user := tokens.User
	if user == nil {
		user, err = s.api.CurrentUser(ctx)
		if err != nil {
			return nil, apperrors.Wrap(err, "loading profile")
		}
	}
	if !user.IsVerified() {
		if err := s.sessions.ClearAuth(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to drop tokens for unverified account", slog.Any("error", err))
		}
		return nil, apperrors.Forbidden("account email is not verified")
	}
	if err := s.sessions.SetUser(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, "caching profile")
	}

	s.logger.InfoContext(ctx, "signed in", slog.String("user_id", user.ID))
	return user, nil
}

// SignOut ends the session. The remote call is best effort; local session
// state is cleared regardless of its outcome.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.api.SignOut(ctx); err != nil {
		s.logger.WarnContext(ctx, "remote sign-out failed", slog.Any("error", err))
	}
	if err := s.sessions.ClearAuth(ctx); err != nil {
		return apperrors.Wrap(err, "clearing session")
	}
	s.logger.InfoContext(ctx, "signed out")
	return nil
}

// CurrentUser fetches the live profile and refreshes the cached copy.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		return nil, translateRemoteError(err)
	}
	if err := s.sessions.SetUser(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh cached profile", slog.Any("error", err))
	}
	return user, nil
}

// UpdateProfile patches the remote profile and the cached copy.
func (s *Service) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*domain.User, error) {
	if err := validator.Validate(update); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	user, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, translateRemoteError(err)
	}
	if err := s.sessions.SetUser(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, "caching profile")
	}
	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", user.ID))
	return user, nil
}

// ChangePassword rotates the password.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.InvalidInput("password must be at least 8 characters")
	}
	if err := s.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return translateRemoteError(err)
	}
	s.logger.InfoContext(ctx, "password changed")
	return nil
}

// VerifyEmail asks the remote to send a verification mail.
func (s *Service) VerifyEmail(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}
	if err := s.api.VerifyEmail(ctx, email); err != nil {
		return translateRemoteError(err)
	}
	return nil
}

// RecoverPassword starts the recovery flow for an email.
func (s *Service) RecoverPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}
	if err := s.api.RecoverPassword(ctx, email); err != nil {
		return translateRemoteError(err)
	}
	return nil
}

// DeleteAccount removes the remote account and wipes the whole local
// session, reviews and orders included.
func (s *Service) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteAccount(ctx); err != nil {
		return translateRemoteError(err)
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return apperrors.Wrap(err, "clearing session")
	}
	s.logger.InfoContext(ctx, "account deleted")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// translateRemoteError rewrites remote error keys into user-facing
// messages. Keys without a translation pass through verbatim so nothing is
// silently dropped.
func translateRemoteError(err error) error {
	var remote *api.Error
	if !errors.As(err, &remote) || len(remote.ErrorKeys) == 0 {
		return err
	}
	messages := make([]string, 0, len(remote.ErrorKeys))
	for _, key := range remote.ErrorKeys {
		if message, ok := errorKeyMessages[key]; ok {
			messages = append(messages, message)
		} else {
			messages = append(messages, key)
		}
	}
	return &apperrors.AppError{
		Code:    "REMOTE_REJECTED",
		Message: strings.Join(messages, "; "),
		Status:  remote.Status,
		Err:     err,
	}
}
