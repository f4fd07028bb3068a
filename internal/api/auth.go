package api

import (
	"context"
	"net/http"

	"github.com/dmcastellon/pupusapos/pkg/types"
)

// AuthClient wraps the /auth endpoints. These respond with bare bodies,
// not the data envelope, and none of them participates in the
// refresh-and-retry protocol (the session manager drives them).
type AuthClient struct {
	client *Client
}

// NewAuthClient builds the auth surface on top of a base client.
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type registerRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	BusinessName string `json:"businessName" validate:"required"`
	RememberMe   bool   `json:"rememberMe"`
}

type rememberRequest struct {
	RememberToken string `json:"rememberToken" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type userResponse struct {
	User types.User `json:"user"`
}

// Login exchanges credentials for a token set.
func (a *AuthClient) Login(ctx context.Context, email, password string, rememberMe bool) (*types.AuthResult, error) {
	var result types.AuthResult
	err := a.client.doBare(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: email, Password: password, RememberMe: rememberMe},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account; same response contract as Login.
func (a *AuthClient) Register(ctx context.Context, email, password, businessName string, rememberMe bool) (*types.AuthResult, error) {
	var result types.AuthResult
	err := a.client.doBare(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerRequest{Email: email, Password: password, BusinessName: businessName, RememberMe: rememberMe},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// LoginWithRemember silently re-authenticates with a remember token.
func (a *AuthClient) LoginWithRemember(ctx context.Context, rememberToken string) (*types.AuthResult, error) {
	var result types.AuthResult
	err := a.client.doBare(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/auth/login-with-remember",
		body:   rememberRequest{RememberToken: rememberToken},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh mints a new access token from the refresh token.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var result refreshResponse
	err := a.client.doBare(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   refreshRequest{RefreshToken: refreshToken},
	}, &result)
	if err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// Logout notifies the server that the session ended. Best effort; the
// caller clears local state regardless of the outcome.
func (a *AuthClient) Logout(ctx context.Context, accessToken string) error {
	return a.client.doBare(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/auth/logout",
		header: bearer(accessToken),
	}, nil)
}

// Me fetches the authenticated profile.
func (a *AuthClient) Me(ctx context.Context, accessToken string) (*types.User, error) {
	var result userResponse
	err := a.client.doBare(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/auth/me",
		header: bearer(accessToken),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result.User, nil
}

// UpdateProfile pushes profile changes.
func (a *AuthClient) UpdateProfile(ctx context.Context, accessToken string, updates types.ProfileUpdate) (*types.User, error) {
	var result userResponse
	err := a.client.doBare(ctx, requestSpec{
		method: http.MethodPut,
		path:   "/auth/update-profile",
		body:   updates,
		header: bearer(accessToken),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result.User, nil
}

// ForgotPassword requests a reset email. The backend acknowledges the
// request whether or not the address exists.
func (a *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	return a.client.doBare(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/auth/forgot-password",
		body:   forgotPasswordRequest{Email: email},
	}, nil)
}

// ResetPassword completes a reset with the emailed token.
func (a *AuthClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	return a.client.doBare(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/auth/reset-password",
		body:   resetPasswordRequest{Token: token, NewPassword: newPassword},
	}, nil)
}

func bearer(accessToken string) http.Header {
	header := http.Header{}
	if accessToken != "" {
		header.Set("Authorization", "Bearer "+accessToken)
	}
	return header
}
