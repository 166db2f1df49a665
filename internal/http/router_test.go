package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalchuk/contacts-api/internal/auth"
	"github.com/mkovalchuk/contacts-api/internal/config"
	"github.com/mkovalchuk/contacts-api/internal/contact"
	"github.com/mkovalchuk/contacts-api/internal/logging"
	"github.com/mkovalchuk/contacts-api/internal/token"
	"github.com/mkovalchuk/contacts-api/internal/user"
)

// In-memory doubles so the whole router can be exercised without postgres,
// redis, smtp or s3.

type memUsers struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*user.User
}

func (s *memUsers) Create(_ context.Context, email, hashedPassword string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	s.nextID++
	u := &user.User{ID: s.nextID, Email: email, HashedPassword: hashedPassword}
	s.byEmail[email] = u
	copied := *u
	return &copied, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUsers) SetAvatarURL(_ context.Context, id int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			u.AvatarURL = &url
			return nil
		}
	}
	return user.ErrNotFound
}

func (s *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			u.HashedPassword = hash
			return nil
		}
	}
	return user.ErrNotFound
}

type memContacts struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*contact.Contact
}

func (s *memContacts) Get(_ context.Context, ownerID, id int64) (*contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return nil, contact.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memContacts) List(_ context.Context, ownerID int64, skip, limit int) ([]*contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var owned []*contact.Contact
	for id := int64(1); id <= s.nextID; id++ {
		if c, ok := s.items[id]; ok && c.OwnerID == ownerID {
			copied := *c
			owned = append(owned, &copied)
		}
	}
	if skip >= len(owned) {
		return nil, nil
	}
	owned = owned[skip:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *memContacts) Create(_ context.Context, ownerID int64, p contact.CreateParams) (*contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := &contact.Contact{
		ID: s.nextID, OwnerID: ownerID,
		FirstName: p.FirstName, LastName: p.LastName, Email: p.Email,
		Phone: p.Phone, Birthday: p.Birthday, AdditionalData: p.AdditionalData,
	}
	s.items[c.ID] = c
	copied := *c
	return &copied, nil
}

func (s *memContacts) Update(_ context.Context, ownerID, id int64, p contact.UpdateParams) (*contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return nil, contact.ErrNotFound
	}
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = p.Phone
	}
	if p.Birthday != nil {
		c.Birthday = p.Birthday
	}
	if p.AdditionalData != nil {
		c.AdditionalData = p.AdditionalData
	}
	copied := *c
	return &copied, nil
}

func (s *memContacts) Delete(_ context.Context, ownerID, id int64) (*contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return nil, contact.ErrNotFound
	}
	delete(s.items, id)
	return c, nil
}

type memMailer struct{}

func (memMailer) EnqueueVerification(string, string) {}
func (memMailer) EnqueuePasswordReset(string, string) {}

type memUploader struct{}

func (memUploader) Upload(context.Context, []byte, string) (string, error) {
	return "https://cdn.example.com/avatars/a.jpg", nil
}

type memSessions struct{}

func (memSessions) RememberLogin(context.Context, string) error { return nil }
func (memSessions) Forget(context.Context, string) error { return nil }

type memLimiter struct{}

func (memLimiter) CheckIPRateLimitWithPurpose(context.Context, string, string) (bool, error) {
	return false, nil
}
func (memLimiter) RecordIPRequestWithPurpose(context.Context, string, string) error { return nil }
func (memLimiter) CheckEmailCooldown(context.Context, string) (bool, error) { return false, nil }
func (memLimiter) SetEmailCooldown(context.Context, string) error { return nil }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewLogger(true)
	tokens, err := token.NewJWTService("test-secret", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	svc := auth.NewService(
		&memUsers{byEmail: make(map[string]*user.User)},
		tokens,
		memMailer{},
		memUploader{},
		memSessions{},
		logger,
		15*time.Minute,
	)

	cfg := &config.Config{}
	cfg.Server.Env = "prod"
	cfg.Server.TrustedOrigins = []string{"http://localhost:3000"}

	return NewRouter(
		cfg,
		auth.NewHandler(svc, memLimiter{}, logger),
		auth.NewMiddleware(tokens),
		contact.NewHandler(&memContacts{items: make(map[int64]*contact.Contact)}, logger),
		logger,
	)
}

func request(t *testing.T, router http.Handler, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoute(t *testing.T) {
	router := newTestServer(t)

	rec := request(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api is running")
}

func TestSwaggerDisabledOutsideDev(t *testing.T) {
	router := newTestServer(t)

	rec := request(t, router, http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestFullAccountLifecycle walks the happy path and its edges end to end
// through the real router, middleware chain and handlers.
func TestFullAccountLifecycle(t *testing.T) {
	router := newTestServer(t)

	// Register, then collide on the same email
	rec := request(t, router, http.MethodPost, "/register", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = request(t, router, http.MethodPost, "/register", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password never logs in
	rec = request(t, router, http.MethodPost, "/token", "", map[string]string{
		"email": "alice@example.com", "password": "wrongpw99",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct credentials yield a token pair
	rec = request(t, router, http.MethodPost, "/token", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Contacts are gated behind the access token
	rec = request(t, router, http.MethodGet, "/contacts", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(t, router, http.MethodPost, "/contacts", pair.AccessToken, map[string]any{
		"first_name": "Grace", "last_name": "Hopper",
		"email": "grace@example.com", "phone": "555-0100",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, float64(1), created["id"])

	// Partial update touches only the supplied field
	rec = request(t, router, http.MethodPatch, "/contacts/1", pair.AccessToken, map[string]any{
		"phone": "555-0199",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "555-0199", updated["phone"])
	assert.Equal(t, "Grace", updated["first_name"])
	assert.Equal(t, "Hopper", updated["last_name"])

	// Delete returns the removed row; a second delete is a 404
	rec = request(t, router, http.MethodDelete, "/contacts/1", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = request(t, router, http.MethodDelete, "/contacts/1", pair.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// The refresh token mints a fresh pair that also works
	rec = request(t, router, http.MethodPost, "/token/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
	rec = request(t, router, http.MethodGet, "/contacts", fresh.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	router := newTestServer(t)

	rec := request(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", rec.Header().Get("Content-Security-Policy"))
}
