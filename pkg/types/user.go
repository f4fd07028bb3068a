package types

import "time"

// User is the cached profile stored alongside the credential slots.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	BusinessName string     `json:"businessName"`
	TrialEndsAt  *time.Time `json:"trialEndsAt,omitempty"`
}

// ProfileUpdate carries the editable profile fields; nil means leave
// the field untouched.
type ProfileUpdate struct {
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	BusinessName *string `json:"businessName,omitempty"`
}

// TokenPair carries the credentials minted by login-class endpoints.
// RememberToken is present only when the caller asked to be remembered.
type TokenPair struct {
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
	RememberToken string `json:"rememberToken,omitempty"`
}

// AuthResult is the shared response shape of login, register, and
// login-with-remember.
type AuthResult struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}
