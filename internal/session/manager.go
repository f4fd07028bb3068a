// Package session owns the credential lifecycle: login, registration,
// silent remember-token login, coalesced token refresh, and the atomic
// clearing rules around logout and irrecoverable auth failures.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dmcastellon/pupusapos/internal/credstore"
	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
	"github.com/dmcastellon/pupusapos/pkg/logger"
	"github.com/dmcastellon/pupusapos/pkg/metrics"
	"github.com/dmcastellon/pupusapos/pkg/types"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

// Credential slot names. The four slots always clear together.
const (
	SlotAccessToken   = "access_token"
	SlotRefreshToken  = "refresh_token"
	SlotRememberToken = "remember_token"
	SlotUser          = "user"
)

// State is the session lifecycle position.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Store persists the named credential slots. ClearAll must be atomic.
type Store interface {
	Get(ctx context.Context, slot string) (string, error)
	Set(ctx context.Context, slot, value string) error
	Delete(ctx context.Context, slot string) error
	ClearAll(ctx context.Context) error
}

// AuthGateway is the slice of the backend the manager needs. The API
// client implements it; tests stub it.
type AuthGateway interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (*types.AuthResult, error)
	Register(ctx context.Context, email, password, businessName string, rememberMe bool) (*types.AuthResult, error)
	LoginWithRemember(ctx context.Context, rememberToken string) (*types.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	Me(ctx context.Context, accessToken string) (*types.User, error)
	UpdateProfile(ctx context.Context, accessToken string, updates types.ProfileUpdate) (*types.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// Manager is the single owner of credential state. The composition root
// builds one instance and hands it to whatever attaches credentials;
// nothing reads the slots directly.
type Manager struct {
	store   Store
	gateway AuthGateway
	logg    *logger.Logger
	metrics *metrics.ClientMetrics

	mu        sync.Mutex
	state     State
	listeners []func()

	refreshGroup singleflight.Group
}

// Params bundles the dependencies required to build a session manager.
type Params struct {
	Store   Store
	Gateway AuthGateway
	Logger  *logger.Logger
	Metrics *metrics.ClientMetrics
}

// NewManager constructs a session manager. Metrics are optional.
func NewManager(params Params) (*Manager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("auth gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Manager{
		store:   params.Store,
		gateway: params.Gateway,
		logg:    params.Logger,
		metrics: params.Metrics,
		state:   StateUnauthenticated,
	}, nil
}

// State reports the current lifecycle position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// OnForcedLogout registers a listener fired when the session is
// invalidated without the operator asking for it (failed refresh). The
// presentation layer subscribes once at startup.
func (m *Manager) OnForcedLogout(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) notifyForcedLogout() {
	m.mu.Lock()
	listeners := make([]func(), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	m.metrics.IncForcedLogout()
}

// Bootstrap recovers a session after process start: a stored access
// token wins, a stored remember token triggers a silent login, and an
// empty store leaves the manager unauthenticated.
func (m *Manager) Bootstrap(ctx context.Context) (State, error) {
	if _, err := m.store.Get(ctx, SlotAccessToken); err == nil {
		m.setState(StateAuthenticated)
		return StateAuthenticated, nil
	} else if !errors.Is(err, credstore.ErrSlotNotFound) {
		return StateUnauthenticated, err
	}

	if _, err := m.store.Get(ctx, SlotRememberToken); err == nil {
		if err := m.SilentLogin(ctx); err != nil {
			m.logg.Warn(ctx, "silent login failed, remember token discarded")
			return StateUnauthenticated, nil
		}
		return StateAuthenticated, nil
	} else if !errors.Is(err, credstore.ErrSlotNotFound) {
		return StateUnauthenticated, err
	}

	m.setState(StateUnauthenticated)
	return StateUnauthenticated, nil
}

// Login authenticates with email and password. No token state is written
// unless the whole exchange succeeds.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) (*types.User, error) {
	m.setState(StateAuthenticating)
	result, err := m.gateway.Login(ctx, email, password, rememberMe)
	if err != nil {
		m.setState(StateUnauthenticated)
		return nil, err
	}
	return m.establish(ctx, result)
}

// Register creates an account and opens a session with the same storage
// contract as Login.
func (m *Manager) Register(ctx context.Context, email, password, businessName string, rememberMe bool) (*types.User, error) {
	m.setState(StateAuthenticating)
	result, err := m.gateway.Register(ctx, email, password, businessName, rememberMe)
	if err != nil {
		m.setState(StateUnauthenticated)
		return nil, err
	}
	return m.establish(ctx, result)
}

// SilentLogin re-authenticates with the stored remember token. A failed
// attempt discards the token: it is treated as expired.
func (m *Manager) SilentLogin(ctx context.Context) error {
	remember, err := m.store.Get(ctx, SlotRememberToken)
	if err != nil {
		if errors.Is(err, credstore.ErrSlotNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "no remember token stored")
		}
		return err
	}

	m.setState(StateAuthenticating)
	result, err := m.gateway.LoginWithRemember(ctx, remember)
	if err != nil {
		m.setState(StateUnauthenticated)
		if delErr := m.store.Delete(ctx, SlotRememberToken); delErr != nil {
			return multierr.Append(err, delErr)
		}
		return err
	}

	_, err = m.establish(ctx, result)
	return err
}

// establish writes the full credential set. A partial write is rolled
// back with ClearAll so the invariant "all four slots or none" holds.
func (m *Manager) establish(ctx context.Context, result *types.AuthResult) (*types.User, error) {
	if result == nil || result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		m.setState(StateUnauthenticated)
		return nil, pkgerrors.New(pkgerrors.CodeDecode, "auth response missing tokens")
	}

	err := m.store.Set(ctx, SlotAccessToken, result.Tokens.AccessToken)
	if err == nil {
		err = m.store.Set(ctx, SlotRefreshToken, result.Tokens.RefreshToken)
	}
	if err == nil && result.Tokens.RememberToken != "" {
		err = m.store.Set(ctx, SlotRememberToken, result.Tokens.RememberToken)
	}
	if err == nil {
		var raw []byte
		raw, err = json.Marshal(result.User)
		if err == nil {
			err = m.store.Set(ctx, SlotUser, string(raw))
		}
	}
	if err != nil {
		m.setState(StateUnauthenticated)
		return nil, multierr.Append(err, m.store.ClearAll(ctx))
	}

	m.setState(StateAuthenticated)
	ctx = m.logg.WithUserID(ctx, fmt.Sprint(result.User.ID))
	m.logg.Info(ctx, "session established")
	user := result.User
	return &user, nil
}

// Logout notifies the server on a best-effort basis and clears the local
// slots unconditionally. A failing or timing-out server call never
// leaves credentials behind.
func (m *Manager) Logout(ctx context.Context) error {
	m.setState(StateAuthenticating)

	if access, err := m.store.Get(ctx, SlotAccessToken); err == nil {
		if err := m.gateway.Logout(ctx, access); err != nil {
			m.logg.Warn(ctx, "server logout failed, clearing local session anyway")
		}
	}

	err := m.store.ClearAll(ctx)
	m.setState(StateUnauthenticated)
	if err != nil {
		return err
	}
	m.logg.Info(ctx, "session closed")
	return nil
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers coalesce onto a single in-flight exchange and all receive the
// same resulting token; a failed exchange invalidates the session.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	token, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return m.refreshLocked(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *Manager) refreshLocked(ctx context.Context) (string, error) {
	refresh, err := m.store.Get(ctx, SlotRefreshToken)
	if err != nil {
		if errors.Is(err, credstore.ErrSlotNotFound) {
			m.metrics.IncRefresh("missing")
			return "", m.invalidate(ctx, pkgerrors.New(pkgerrors.CodeUnauthorized, "no refresh token stored"))
		}
		return "", err
	}

	access, err := m.gateway.Refresh(ctx, refresh)
	if err != nil {
		// Plain network trouble is not an invalid refresh token; keep
		// the session and let the caller retry later.
		if pkgerrors.IsRetryable(err) {
			m.metrics.IncRefresh("error")
			return "", err
		}
		m.metrics.IncRefresh("failure")
		return "", m.invalidate(ctx, err)
	}

	if err := m.store.Set(ctx, SlotAccessToken, access); err != nil {
		return "", err
	}
	m.metrics.IncRefresh("success")
	m.logg.Debug(ctx, "access token refreshed")
	return access, nil
}

// invalidate clears everything after an irrecoverable auth failure and
// tells the presentation layer to route back to login.
func (m *Manager) invalidate(ctx context.Context, cause error) error {
	clearErr := m.store.ClearAll(ctx)
	m.setState(StateUnauthenticated)
	m.notifyForcedLogout()
	m.logg.Warn(ctx, "session invalidated")
	return multierr.Append(cause, clearErr)
}

// AccessToken returns the stored access token, refreshing first when the
// token is already past its expiry claim. An empty string means no
// session.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	access, err := m.store.Get(ctx, SlotAccessToken)
	if err != nil {
		if errors.Is(err, credstore.ErrSlotNotFound) {
			return "", nil
		}
		return "", err
	}
	if tokenExpired(access, time.Now()) {
		return m.Refresh(ctx)
	}
	return access, nil
}

// Authenticated reports whether a session is active or recoverable: a
// missing access token does not mean logged out while a remember token
// is still stored.
func (m *Manager) Authenticated(ctx context.Context) bool {
	if _, err := m.store.Get(ctx, SlotAccessToken); err == nil {
		return true
	}
	if _, err := m.store.Get(ctx, SlotRememberToken); err == nil {
		return true
	}
	return false
}

// CurrentUser returns the cached profile, fetching it from the backend
// when the slot is empty.
func (m *Manager) CurrentUser(ctx context.Context) (*types.User, error) {
	raw, err := m.store.Get(ctx, SlotUser)
	if err == nil {
		var user types.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return &user, nil
		}
		// A corrupted slot falls through to a fresh fetch.
	} else if !errors.Is(err, credstore.ErrSlotNotFound) {
		return nil, err
	}

	access, err := m.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not logged in")
	}
	user, err := m.gateway.Me(ctx, access)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := m.store.Set(ctx, SlotUser, string(raw)); err != nil {
			m.logg.Warn(ctx, "could not cache user profile")
		}
	}
	return user, nil
}

// UpdateProfile pushes profile changes and refreshes the cached copy.
func (m *Manager) UpdateProfile(ctx context.Context, updates types.ProfileUpdate) (*types.User, error) {
	access, err := m.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not logged in")
	}
	user, err := m.gateway.UpdateProfile(ctx, access, updates)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := m.store.Set(ctx, SlotUser, string(raw)); err != nil {
			m.logg.Warn(ctx, "could not cache user profile")
		}
	}
	return user, nil
}

// ForgotPassword requests a reset email. The backend acknowledges
// regardless of whether the address exists.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	return m.gateway.ForgotPassword(ctx, email)
}

// ResetPassword completes a reset with the emailed token.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.gateway.ResetPassword(ctx, token, newPassword)
}

// TrialDaysRemaining reports whole days left on the stored profile's
// trial, never below zero.
func (m *Manager) TrialDaysRemaining(ctx context.Context, now time.Time) int {
	user, err := m.CurrentUser(ctx)
	if err != nil || user == nil || user.TrialEndsAt == nil {
		return 0
	}
	return TrialDaysRemaining(*user.TrialEndsAt, now)
}

// TrialDaysRemaining is ceil((trialEndsAt - now) / 1 day), floored at 0.
func TrialDaysRemaining(trialEndsAt, now time.Time) int {
	days := int(math.Ceil(trialEndsAt.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
