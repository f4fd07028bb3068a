// Package apitest runs an in-process stand-in for the pupusería backend
// so client tests exercise real HTTP round trips: bearer auth, the data
// envelope, token refresh, and injected 401s.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmcastellon/pupusapos/pkg/enums"
	"github.com/dmcastellon/pupusapos/pkg/money"
	"github.com/dmcastellon/pupusapos/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ValidPassword is the only password the fake accepts.
	ValidPassword = "let-me-in-123"
	// ValidRemember is the remember token minted on login.
	ValidRemember = "remember-ok"
)

// Server is the fake backend. Zero-value fields are not usable; build it
// with New and stop it with Close.
type Server struct {
	URL string

	mu           sync.Mutex
	secret       []byte
	products     []types.Product
	orders       map[int64]types.Order
	nextOrderID  int64
	refreshCalls int
	rejectAuthed int
	doubleWrap   bool

	srv *httptest.Server
}

// New starts the fake backend with a small canned catalog.
func New() *Server {
	s := &Server{
		secret: []byte("apitest-secret"),
		products: []types.Product{
			{ID: 1, Name: "pupusa revuelta", Masa: enums.MasaMaiz, Price: money.MustParse("0.35"), IsSmall: true},
			{ID: 2, Name: "pupusa de queso", Masa: enums.MasaArroz, Price: money.MustParse("0.35"), IsSmall: true},
			{ID: 3, Name: "plato típico", Price: money.MustParse("2.00")},
		},
		orders:      map[int64]types.Order{},
		nextOrderID: 1,
	}

	r := chi.NewRouter()
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login-with-remember", s.handleRemember)
	r.Post("/auth/refresh", s.handleRefresh)
	r.Post("/auth/logout", s.requireAuth(s.handleOK))
	r.Get("/auth/me", s.requireAuth(s.handleMe))
	r.Put("/auth/update-profile", s.requireAuth(s.handleMe))
	r.Post("/auth/forgot-password", s.handleOK)
	r.Post("/auth/reset-password", s.handleOK)

	r.Get("/products", s.requireAuth(s.handleListProducts))
	r.Get("/products/{id}", s.requireAuth(s.handleGetProduct))
	r.Post("/orders", s.requireAuth(s.handleCreateOrder))
	r.Get("/orders/{id}", s.requireAuth(s.handleGetOrder))

	s.srv = httptest.NewServer(r)
	s.URL = s.srv.URL
	return s
}

// Close stops the server.
func (s *Server) Close() { s.srv.Close() }

// RefreshCalls reports how many times /auth/refresh was hit.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// RejectNextAuthed makes the next n authenticated requests fail with 401
// regardless of the token, simulating a server-side token revocation.
func (s *Server) RejectNextAuthed(n int) {
	s.mu.Lock()
	s.rejectAuthed = n
	s.mu.Unlock()
}

// DoubleWrapLists makes list endpoints emit the legacy
// {"data":{"data":[...]}} shape.
func (s *Server) DoubleWrapLists(on bool) {
	s.mu.Lock()
	s.doubleWrap = on
	s.mu.Unlock()
}

// MintAccessToken signs an HS256 token the fake accepts, expiring after
// ttl. Negative ttl produces an already-expired token.
func (s *Server) MintAccessToken(ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		reject := s.rejectAuthed > 0
		if reject {
			s.rejectAuthed--
		}
		s.mu.Unlock()
		if reject {
			writeError(w, http.StatusUnauthorized, "token revoked")
			return
		}

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return s.secret, nil },
			jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if req.Password != ValidPassword {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.writeAuthResult(w, req.Email, req.RememberMe)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email        string `json:"email"`
		BusinessName string `json:"businessName"`
		RememberMe   bool   `json:"rememberMe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if req.Email == "taken@example.com" {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	s.writeAuthResult(w, req.Email, req.RememberMe)
}

func (s *Server) handleRemember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RememberToken string `json:"rememberToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RememberToken != ValidRemember {
		writeError(w, http.StatusUnauthorized, "remember token expired")
		return
	}
	s.writeAuthResult(w, "owner@example.com", true)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.refreshCalls++
	s.mu.Unlock()

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken": s.MintAccessToken(time.Hour),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": s.cannedUser("owner@example.com")})
}

func (s *Server) handleOK(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doubleWrap := s.doubleWrap
	products := make([]types.Product, len(s.products))
	copy(products, s.products)
	s.mu.Unlock()

	if doubleWrap {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"data": products}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": products})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"data": p})
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var input types.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	s.mu.Lock()
	id := s.nextOrderID
	s.nextOrderID++
	order := types.Order{
		ID:           id,
		IsDelivery:   input.IsDelivery,
		DeliveryCost: input.DeliveryCost,
		Total:        input.Total,
		BusinessDay:  input.BusinessDay,
	}
	s.orders[id] = order
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"data": order})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	order, ok := s.orders[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": order})
}

func (s *Server) writeAuthResult(w http.ResponseWriter, email string, rememberMe bool) {
	tokens := types.TokenPair{
		AccessToken:  s.MintAccessToken(time.Hour),
		RefreshToken: "refresh-1",
	}
	if rememberMe {
		tokens.RememberToken = ValidRemember
	}
	writeJSON(w, http.StatusOK, types.AuthResult{
		User:   s.cannedUser(email),
		Tokens: tokens,
	})
}

func (s *Server) cannedUser(email string) types.User {
	trial := time.Now().Add(10 * 24 * time.Hour).UTC()
	return types.User{ID: 1, Email: email, BusinessName: "Pupusería Carmencita", TrialEndsAt: &trial}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
