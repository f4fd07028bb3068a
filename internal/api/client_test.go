package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmcastellon/pupusapos/internal/apitest"
	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
	"github.com/dmcastellon/pupusapos/pkg/logger"
	"github.com/rs/zerolog"
)

type stubTokens struct {
	mu       sync.Mutex
	access   string
	refreshs int
	mint     func() string
}

func (s *stubTokens) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, nil
}

func (s *stubTokens) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshs++
	s.access = s.mint()
	return s.access, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func newTestClient(t *testing.T, baseURL string, tokens TokenSource) *Client {
	t.Helper()
	client, err := New(Options{BaseURL: baseURL, Tokens: tokens, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestListProductsDecodesEnvelope(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	tokens := &stubTokens{access: backend.MintAccessToken(time.Hour), mint: func() string { return backend.MintAccessToken(time.Hour) }}
	client := newTestClient(t, backend.URL, tokens)

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if !products[0].IsSmall || products[0].Price.String() != "0.35" {
		t.Fatalf("unexpected product %+v", products[0])
	}
}

func TestListProductsAcceptsDoubleWrappedEnvelope(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	backend.DoubleWrapLists(true)

	tokens := &stubTokens{access: backend.MintAccessToken(time.Hour), mint: func() string { return backend.MintAccessToken(time.Hour) }}
	client := newTestClient(t, backend.URL, tokens)

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
}

func TestUnauthorizedTriggersExactlyOneRefreshAndRetry(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	backend.RejectNextAuthed(1)

	tokens := &stubTokens{access: backend.MintAccessToken(time.Hour), mint: func() string { return backend.MintAccessToken(time.Hour) }}
	client := newTestClient(t, backend.URL, tokens)

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products after retry: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if tokens.refreshs != 1 {
		t.Fatalf("expected exactly one refresh, got %d", tokens.refreshs)
	}
}

func TestPersistentUnauthorizedFailsAfterSingleRetry(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	backend.RejectNextAuthed(10)

	tokens := &stubTokens{access: backend.MintAccessToken(time.Hour), mint: func() string { return backend.MintAccessToken(time.Hour) }}
	client := newTestClient(t, backend.URL, tokens)

	_, err := client.ListProducts(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if tokens.refreshs != 1 {
		t.Fatalf("expected exactly one refresh, got %d", tokens.refreshs)
	}
}

func TestUnauthenticatedClientGets401WithoutRefresh(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	client, err := New(Options{BaseURL: backend.URL, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.ListProducts(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestTimeoutClassifiedAsTimeoutNotAuthFailure(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer slow.Close()

	tokens := &stubTokens{access: "token", mint: func() string { return "token" }}
	client, err := New(Options{BaseURL: slow.URL, Timeout: 50 * time.Millisecond, Tokens: tokens, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.ListProducts(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if pkgerrors.IsAuthFailure(err) {
		t.Fatal("a timeout must never classify as an auth failure")
	}
	if tokens.refreshs != 0 {
		t.Fatalf("timeout must not trigger a refresh, got %d", tokens.refreshs)
	}
}

func TestRequestValidationFailsBeforeSending(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	auth := NewAuthClient(newTestClient(t, backend.URL, nil))
	if _, err := auth.Login(context.Background(), "not-an-email", "pw", false); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthEndpointsUseBareBodies(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	auth := NewAuthClient(newTestClient(t, backend.URL, nil))

	result, err := auth.Login(context.Background(), "owner@example.com", apitest.ValidPassword, true)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("missing tokens in %+v", result.Tokens)
	}
	if result.Tokens.RememberToken != apitest.ValidRemember {
		t.Fatalf("expected remember token, got %q", result.Tokens.RememberToken)
	}
	if result.User.BusinessName == "" {
		t.Fatalf("missing user in %+v", result.User)
	}

	access, err := auth.Refresh(context.Background(), result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" {
		t.Fatal("refresh returned an empty access token")
	}
	if backend.RefreshCalls() != 1 {
		t.Fatalf("expected one refresh call, got %d", backend.RefreshCalls())
	}

	user, err := auth.Me(context.Background(), access)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Email == "" {
		t.Fatalf("missing profile in %+v", user)
	}
}

func TestLoginFailurePropagatesServerMessage(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	auth := NewAuthClient(newTestClient(t, backend.URL, nil))
	_, err := auth.Login(context.Background(), "owner@example.com", "wrong-password", false)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := pkgerrors.UserMessage(err); got != "invalid credentials" {
		t.Fatalf("expected verbatim server message, got %q", got)
	}
}

func TestRegisterConflict(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	auth := NewAuthClient(newTestClient(t, backend.URL, nil))
	_, err := auth.Register(context.Background(), "taken@example.com", "long-enough-pw", "Pupusería", false)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	tokens := &stubTokens{access: backend.MintAccessToken(time.Hour), mint: func() string { return backend.MintAccessToken(time.Hour) }}
	client := newTestClient(t, backend.URL, tokens)

	_, err := client.GetProduct(context.Background(), 999)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
