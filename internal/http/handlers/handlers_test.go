package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/http/handlers"
	"github.com/smartcardai/trialdesk/internal/service"
	"github.com/smartcardai/trialdesk/pkg/auth"
	"github.com/smartcardai/trialdesk/pkg/config"
)

// ---------- Mocks ----------

type mockAuthService struct {
	result *service.LoginResult
	err    error
}

func (m *mockAuthService) Login(_ context.Context, username, password string) (*service.LoginResult, error) {
	return m.result, m.err
}

type mockTrialService struct {
	trial    *domain.TrialRequest
	err      error
	lastNote string
}

func (m *mockTrialService) Register(_ context.Context, req *domain.RegisterRequest) (*domain.TrialRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.trial, nil
}
func (m *mockTrialService) Get(context.Context, int64) (*domain.TrialRequest, error) {
	return m.trial, m.err
}
func (m *mockTrialService) List(context.Context, int, int) ([]domain.TrialRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.trial == nil {
		return []domain.TrialRequest{}, nil
	}
	return []domain.TrialRequest{*m.trial}, nil
}
func (m *mockTrialService) ListByIntern(context.Context, int64) ([]domain.TrialRequest, error) {
	return m.List(nil, 0, 0)
}
func (m *mockTrialService) Update(context.Context, int64, domain.TrialPatch) (*domain.TrialRequest, error) {
	return m.trial, m.err
}
func (m *mockTrialService) Delete(context.Context, int64) error { return m.err }
func (m *mockTrialService) Assign(context.Context, int64, *int64) (*domain.TrialRequest, error) {
	return m.trial, m.err
}
func (m *mockTrialService) UpdateStatus(context.Context, int64, string) (*domain.TrialRequest, error) {
	return m.trial, m.err
}
func (m *mockTrialService) MergeProject(context.Context, int64, map[string]any) (*domain.TrialRequest, error) {
	return m.trial, m.err
}
func (m *mockTrialService) AddInternNote(_ context.Context, _ int64, _ int64, note string) (*domain.TrialRequest, error) {
	m.lastNote = note
	return m.trial, m.err
}

type mockDemoService struct {
	demo     *domain.DemoCredential
	err      error
	lastNote string
}

func (m *mockDemoService) Register(context.Context, *domain.RegisterRequest) (*domain.DemoCredential, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.demo, nil
}
func (m *mockDemoService) Get(context.Context, int64) (*domain.DemoCredential, error) {
	return m.demo, m.err
}
func (m *mockDemoService) List(context.Context) ([]domain.DemoCredential, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.DemoCredential{}, nil
}
func (m *mockDemoService) ListByIntern(context.Context, int64) ([]domain.DemoCredential, error) {
	return m.List(nil)
}
func (m *mockDemoService) Update(context.Context, int64, domain.DemoPatch) (*domain.DemoCredential, error) {
	return m.demo, m.err
}
func (m *mockDemoService) Delete(context.Context, int64) error { return m.err }
func (m *mockDemoService) Regenerate(context.Context, int64) (*domain.DemoCredential, error) {
	return m.demo, m.err
}
func (m *mockDemoService) Assign(context.Context, int64, *int64) (*domain.DemoCredential, error) {
	return m.demo, m.err
}
func (m *mockDemoService) UpdateAdminNote(_ context.Context, _ int64, note string) (*domain.DemoCredential, error) {
	m.lastNote = note
	return m.demo, m.err
}
func (m *mockDemoService) AddInternNote(_ context.Context, _ int64, _ int64, note string) (*domain.DemoCredential, error) {
	m.lastNote = note
	return m.demo, m.err
}

type mockStaffService struct {
	intern *domain.Intern
	err    error
}

func (m *mockStaffService) Create(context.Context, *domain.CreateInternRequest) (*domain.Intern, error) {
	return m.intern, m.err
}
func (m *mockStaffService) Get(context.Context, int64) (*domain.Intern, error) {
	return m.intern, m.err
}
func (m *mockStaffService) List(context.Context) ([]domain.Intern, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Intern{}, nil
}
func (m *mockStaffService) Update(context.Context, int64, domain.InternPatch) (*domain.Intern, error) {
	return m.intern, m.err
}
func (m *mockStaffService) UpdateCredentials(context.Context, int64, *domain.InternCredentials) (*domain.Intern, error) {
	return m.intern, m.err
}
func (m *mockStaffService) Delete(context.Context, int64) error { return m.err }

type mockNotificationService struct {
	view *service.NotificationView
	err  error
}

func (m *mockNotificationService) List(context.Context, domain.RecipientType, *int64, int, bool) (*service.NotificationView, error) {
	return m.view, m.err
}
func (m *mockNotificationService) MarkRead(context.Context, int64) error { return m.err }
func (m *mockNotificationService) MarkAllRead(context.Context, domain.RecipientType, *int64) (int64, error) {
	return 0, m.err
}
func (m *mockNotificationService) Delete(context.Context, int64) error { return m.err }

type mockRateLimitRepo struct {
	allowed bool
}

func (m *mockRateLimitRepo) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return m.allowed, nil
}

// ---------- Test Setup ----------

type mocks struct {
	auth          *mockAuthService
	trials        *mockTrialService
	staff         *mockStaffService
	demos         *mockDemoService
	notifications *mockNotificationService
	limits        *mockRateLimitRepo
}

func setupTestServer(t *testing.T) (*httptest.Server, *mocks, *config.Config) {
	t.Helper()

	m := &mocks{
		auth:          &mockAuthService{},
		trials:        &mockTrialService{},
		staff:         &mockStaffService{},
		demos:         &mockDemoService{},
		notifications: &mockNotificationService{view: &service.NotificationView{Notifications: []domain.Notification{}}},
		limits:        &mockRateLimitRepo{allowed: true},
	}

	cfg := config.Load()
	h := handlers.New(m.auth, m.trials, m.staff, m.demos, m.notifications, cfg)
	server := httptest.NewServer(h.NewRouter(m.limits))
	t.Cleanup(server.Close)

	return server, m, cfg
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) (bool, string, json.RawMessage) {
	t.Helper()
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env.Success, env.Message, env.Data
}

func adminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := auth.NewAccessToken(0, "admin", "admin", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func internToken(t *testing.T, cfg *config.Config, id int64) string {
	t.Helper()
	token, err := auth.NewAccessToken(id, "intern", "intern", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// ---------- Tests ----------

func TestRegister_DemoReturnsCredentials(t *testing.T) {
	server, m, _ := setupTestServer(t)

	m.demos.demo = &domain.DemoCredential{
		ID:        1,
		Username:  "demo_grac42",
		Password:  "ab12cd34",
		ExpiresAt: time.Now().UTC().Add(domain.DemoLifetime),
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]any{
		"firstName":   "Grace",
		"lastName":    "Hopper",
		"email":       "grace@example.com",
		"company":     "Navy",
		"phone":       "1",
		"accountType": "demo",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	success, _, data := decodeEnvelope(t, resp)
	if !success {
		t.Fatal("expected success envelope")
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^demo_[a-z]{4}[0-9]{2}$`).MatchString(payload.Username) {
		t.Fatalf("username %q does not match pattern", payload.Username)
	}
	if !regexp.MustCompile(`^[a-z0-9]{8}$`).MatchString(payload.Password) {
		t.Fatalf("password %q does not match pattern", payload.Password)
	}
}

func TestRegister_ErrorStatusMapping(t *testing.T) {
	server, m, _ := setupTestServer(t)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("email is required"), http.StatusBadRequest},
		{"duplicate", domain.ErrDuplicateEmail, http.StatusBadRequest},
		{"storage", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m.trials.err = tc.err
			resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]any{
				"firstName": "A", "lastName": "B", "email": "a@b.c", "company": "C", "phone": "1",
			})
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
			success, message, _ := decodeEnvelope(t, resp)
			if success {
				t.Fatal("expected failure envelope")
			}
			if tc.want == http.StatusInternalServerError && message != "Internal server error" {
				t.Fatalf("storage errors must stay generic, got %q", message)
			}
		})
	}
}

func TestRegister_RateLimited(t *testing.T) {
	server, m, _ := setupTestServer(t)
	m.limits.allowed = false

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]any{
		"firstName": "A", "lastName": "B", "email": "a@b.c", "company": "C", "phone": "1",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server, m, _ := setupTestServer(t)
	m.auth.err = domain.ErrInvalidCredentials

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"username": "ghost", "password": "boo",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminRoutes_RequireJWT(t *testing.T) {
	server, _, cfg := setupTestServer(t)

	// No token
	resp := doJSON(t, http.MethodGet, server.URL+"/api/admin/customers", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	// Intern token on admin route
	resp = doJSON(t, http.MethodGet, server.URL+"/api/admin/customers", internToken(t, cfg, 5), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status with intern token = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin token passes
	resp = doJSON(t, http.MethodGet, server.URL+"/api/admin/customers", adminToken(t, cfg), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with admin token = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminRoutes_NotFoundMapping(t *testing.T) {
	server, m, cfg := setupTestServer(t)
	m.trials.err = domain.ErrNotFound

	resp := doJSON(t, http.MethodPut, server.URL+"/api/admin/customers/99", adminToken(t, cfg), map[string]string{
		"company": "New Name",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestInternNote_AccessDeniedMapping(t *testing.T) {
	server, m, cfg := setupTestServer(t)
	m.demos.err = domain.ErrAccessDenied

	resp := doJSON(t, http.MethodPut, server.URL+"/api/intern/demos/3/note", internToken(t, cfg, 9), map[string]string{
		"note": "mine now",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAssignRequest_AcceptsEmptyAndNumericInternID(t *testing.T) {
	server, m, cfg := setupTestServer(t)
	m.trials.trial = &domain.TrialRequest{ID: 1, Status: domain.TrialPending}

	for _, body := range []string{
		`{"intern_id": 3}`,
		`{"intern_id": "3"}`,
		`{"intern_id": ""}`,
		`{"intern_id": null}`,
	} {
		req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/admin/requests/1/assign", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+adminToken(t, cfg))

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("body %s: status = %d, want 200", body, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

// The admin UI posts admin_note / intern_note keys on the note routes;
// a payload in that shape must land verbatim, never degrade to "".
func TestNoteRoutes_AcceptClientPayloadKeys(t *testing.T) {
	server, m, cfg := setupTestServer(t)

	internID := int64(7)
	m.demos.demo = &domain.DemoCredential{ID: 4, AssignedInternID: &internID}
	m.trials.trial = &domain.TrialRequest{ID: 9, AssignedInternID: &internID}

	admin := adminToken(t, cfg)
	intern := internToken(t, cfg, internID)

	cases := []struct {
		name  string
		url   string
		token string
		body  map[string]any
		got   func() string
		want  string
	}{
		{
			name:  "admin demo admin-note",
			url:   "/api/admin/demos/4/admin-note",
			token: admin,
			body:  map[string]any{"admin_note": "call the customer"},
			got:   func() string { return m.demos.lastNote },
			want:  "call the customer",
		},
		{
			name:  "admin demo intern-note",
			url:   "/api/admin/demos/4/intern-note",
			token: admin,
			body:  map[string]any{"intern_note": "setup done"},
			got:   func() string { return m.demos.lastNote },
			want:  "setup done",
		},
		{
			name:  "intern request note",
			url:   "/api/intern/requests/9/note",
			token: intern,
			body:  map[string]any{"intern_note": "kickoff scheduled"},
			got:   func() string { return m.trials.lastNote },
			want:  "kickoff scheduled",
		},
		{
			name:  "intern demo note",
			url:   "/api/intern/demos/4/note",
			token: intern,
			body:  map[string]any{"intern_note": "walkthrough sent"},
			got:   func() string { return m.demos.lastNote },
			want:  "walkthrough sent",
		},
		{
			name:  "bare note key still works",
			url:   "/api/admin/demos/4/admin-note",
			token: admin,
			body:  map[string]any{"note": "legacy client"},
			got:   func() string { return m.demos.lastNote },
			want:  "legacy client",
		},
	}

	for _, tc := range cases {
		resp := doJSON(t, http.MethodPut, server.URL+tc.url, tc.token, tc.body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", tc.name, resp.StatusCode)
		}
		resp.Body.Close()
		if got := tc.got(); got != tc.want {
			t.Fatalf("%s: note persisted as %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStubRoutes_Return501(t *testing.T) {
	server, _, cfg := setupTestServer(t)

	for _, path := range []string{"/api/user/profile", "/api/user/dashboard"} {
		resp := doJSON(t, http.MethodGet, server.URL+path, "", nil)
		if resp.StatusCode != http.StatusNotImplemented {
			t.Fatalf("%s: status = %d, want 501", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	admin := adminToken(t, cfg)
	adminStubs := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/dashboard"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/integrations"},
		{http.MethodPost, "/api/admin/integrations"},
		{http.MethodGet, "/api/admin/domains"},
		{http.MethodPost, "/api/admin/domains"},
	}
	for _, s := range adminStubs {
		resp := doJSON(t, s.method, server.URL+s.path, admin, nil)
		if resp.StatusCode != http.StatusNotImplemented {
			t.Fatalf("%s %s: status = %d, want 501", s.method, s.path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	success, _, _ := decodeEnvelope(t, resp)
	if !success {
		t.Fatal("expected success envelope from health")
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestNotifications_InvalidRecipientType(t *testing.T) {
	server, _, cfg := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/notifications/everyone", adminToken(t, cfg), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}
