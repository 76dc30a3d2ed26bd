package api

import (
	"context"
	"net/http"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
)

// SignUpRequest carries the registration payload. Validation tags mirror
// what the remote enforces so obviously bad input never leaves the client.
type SignUpRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Age       int    `json:"age" validate:"required,gte=13"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Address   string `json:"address" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Zipcode   string `json:"zipcode" validate:"required"`
	Gender    string `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	return c.do(ctx, call{
		name:   "auth.sign_up",
		method: http.MethodPost,
		path:   "/auth/sign_up",
		body:   req,
	}, nil)
}

// SignIn exchanges credentials for a token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.AuthTokens, error) {
	var tokens domain.AuthTokens
	err := c.do(ctx, call{
		name:   "auth.sign_in",
		method: http.MethodPost,
		path:   "/auth/sign_in",
		body:   map[string]string{"email": email, "password": password},
	}, &tokens)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

// SignOut invalidates the session on the remote side. Some deployments do
// not implement the endpoint, so 404 and 501 answers count as success.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, call{
		name:       "auth.sign_out",
		method:     http.MethodPost,
		path:       "/auth/sign_out",
		body:       map[string]any{},
		authorized: true,
	}, nil)
	if statusIs(err, http.StatusNotFound) || statusIs(err, http.StatusNotImplemented) {
		return nil
	}
	return err
}

// CurrentUser fetches the profile behind the access token.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, call{
		name:       "auth.current_user",
		method:     http.MethodGet,
		path:       "/auth",
		authorized: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate names the mutable profile fields. Zero-value fields are
// left untouched on the remote side.
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Age       int    `json:"age,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Zipcode   string `json:"zipcode,omitempty"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,url"`
	Gender    string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
}

// UpdateProfile patches the caller's profile and returns the fresh copy.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, call{
		name:       "auth.update_profile",
		method:     http.MethodPatch,
		path:       "/auth/update",
		body:       update,
		authorized: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword rotates the caller's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.do(ctx, call{
		name:       "auth.change_password",
		method:     http.MethodPatch,
		path:       "/auth/change_password",
		body:       map[string]string{"oldPassword": oldPassword, "newPassword": newPassword},
		authorized: true,
	}, nil)
}

// VerifyEmail asks the remote to send a verification mail.
func (c *Client) VerifyEmail(ctx context.Context, email string) error {
	return c.do(ctx, call{
		name:   "auth.verify_email",
		method: http.MethodPost,
		path:   "/auth/verify_email",
		body:   map[string]string{"email": email},
	}, nil)
}

// RecoverPassword starts the password recovery flow.
func (c *Client) RecoverPassword(ctx context.Context, email string) error {
	return c.do(ctx, call{
		name:   "auth.recovery",
		method: http.MethodPost,
		path:   "/auth/recovery",
		body:   map[string]string{"email": email},
	}, nil)
}

// DeleteAccount removes the caller's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, call{
		name:       "auth.delete",
		method:     http.MethodDelete,
		path:       "/auth/delete",
		authorized: true,
	}, nil)
}
