package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"

	"golang.org/x/crypto/bcrypt"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
}

func newTestServer(t *testing.T, pinger Pinger) *Server {
	t.Helper()
	store := memory.New()
	logger := log.Discard()
	gateways := services.NewGateways(store, services.Deps{Logger: logger})
	dashboard := services.NewDashboard(gateways, services.DashboardOptions{Logger: logger})
	gateways.SetInvalidator(dashboard)
	authSvc := auth.NewService(store.Users(), auth.Options{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
		Logger:     logger,
	})
	srv := NewServer(Options{
		Addr:               ":0",
		Gateways:           gateways,
		Dashboard:          dashboard,
		Auth:               authSvc,
		Store:              pinger,
		RateLimitPerMinute: 1000,
		Logger:             logger,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rr.Body.String())
		}
	}
	return rr, env
}

func signUp(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rr, env := do(t, srv, http.MethodPost, "/api/auth/signup",
		`{"email":"`+email+`","password":"secret123"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}
	var session auth.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("signup returned no token")
	}
	return session.Token
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, fakePinger{})

	rr, _ := do(t, srv, http.MethodGet, "/healthz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	rr, _ = do(t, srv, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rr.Code)
	}

	down := newTestServer(t, fakePinger{err: errors.New("connection refused")})
	rr, _ = do(t, down, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing store status=%d", rr.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, env := do(t, srv, http.MethodGet, "/api/auth/session", "", "")
	if rr.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("session without token status=%d", rr.Code)
	}

	token := signUp(t, srv, "ada@example.com")

	rr, _ = do(t, srv, http.MethodPost, "/api/auth/signup", `{"email":"ada@example.com","password":"secret123"}`, "")
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate signup status=%d", rr.Code)
	}

	rr, env = do(t, srv, http.MethodPost, "/api/auth/signup", `{"email":"bob@example.com","password":"abc"}`, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("weak password status=%d", rr.Code)
	}
	if !strings.Contains(env.Error, "at least 6 characters") {
		t.Errorf("weak password message=%q", env.Error)
	}

	rr, _ = do(t, srv, http.MethodPost, "/api/auth/signup",
		`{"email":"bob@example.com","password":"secret123","confirm_password":"secret124"}`, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("mismatched confirmation status=%d", rr.Code)
	}

	rr, _ = do(t, srv, http.MethodPost, "/api/auth/signin", `{"email":"ada@example.com","password":"wrong-password"}`, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials status=%d", rr.Code)
	}

	rr, _ = do(t, srv, http.MethodPost, "/api/auth/signin", `{"email":"ada@example.com","password":"secret123"}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("signin status=%d", rr.Code)
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("signin cookie=%+v", cookie)
	}

	rr, _ = do(t, srv, http.MethodGet, "/api/auth/session", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("session status=%d", rr.Code)
	}

	rr, _ = do(t, srv, http.MethodPost, "/api/auth/signout", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("signout status=%d", rr.Code)
	}
	rr, _ = do(t, srv, http.MethodGet, "/api/auth/session", "", token)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("session after signout status=%d", rr.Code)
	}
}

func TestRecordsRequireSession(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, target := range []string{"/api/transactions", "/api/budgets", "/api/notes", "/api/assets", "/api/analytics/budget-total"} {
		rr, env := do(t, srv, http.MethodGet, target, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s status=%d", target, rr.Code)
		}
		if env.Success || env.Error == "" {
			t.Errorf("%s body=%+v", target, env)
		}
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	token := signUp(t, srv, "ada@example.com")

	rr, env := do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2024-03-05","type":"Expenditure","name":"Lunch","category":"Food","method":"Cash","amount":12.50}`, token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.Name != "Lunch" || created.Amount != "12.5" {
		t.Fatalf("created=%+v", created)
	}

	rr, env = do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2024-03-06","type":"Expenditure","name":"","category":"Food","method":"Cash","amount":-3}`, token)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid create status=%d", rr.Code)
	}
	if env.Fields["name"] == "" || env.Fields["amount"] == "" {
		t.Errorf("validation fields=%v", env.Fields)
	}

	do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2024-04-01","type":"Income","name":"Salary","category":"Salary","method":"Bank","amount":"3000"}`, token)

	rr, env = do(t, srv, http.MethodGet, "/api/transactions/period?month=March&year=2024", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("period status=%d", rr.Code)
	}
	var march []map[string]any
	if err := json.Unmarshal(env.Data, &march); err != nil {
		t.Fatalf("decode period: %v", err)
	}
	if len(march) != 1 || march[0]["name"] != "Lunch" {
		t.Errorf("march=%v", march)
	}

	rr, env = do(t, srv, http.MethodGet, "/api/transactions?sort=amount&dir=desc", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var all []map[string]any
	if err := json.Unmarshal(env.Data, &all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all) != 2 || all[0]["name"] != "Salary" {
		t.Errorf("sorted list=%v", all)
	}

	rr, env = do(t, srv, http.MethodGet, "/api/transactions?column=name&q=lun", "", token)
	if err := json.Unmarshal(env.Data, &all); err != nil || len(all) != 1 {
		t.Errorf("search status=%d list=%v err=%v", rr.Code, all, err)
	}

	rr, _ = do(t, srv, http.MethodPut, "/api/transactions/"+created.ID,
		`{"date":"2024-03-05","type":"Expenditure","name":"Dinner","category":"Food","method":"Cash","amount":"20"}`, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}

	other := signUp(t, srv, "bob@example.com")
	rr, env = do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "", other)
	if rr.Code != http.StatusNotFound || env.Error != "record not found" {
		t.Errorf("foreign delete status=%d error=%q", rr.Code, env.Error)
	}

	rr, _ = do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr, _ = do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "", token)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d", rr.Code)
	}
}

func TestNotesHaveNoPeriodRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	token := signUp(t, srv, "ada@example.com")

	rr, _ := do(t, srv, http.MethodPost, "/api/notes", `{"heading":"Plan","content":"Save more"}`, token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create note status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr, _ = do(t, srv, http.MethodGet, "/api/notes/period", "", token)
	if rr.Code == http.StatusOK {
		t.Errorf("notes period route should not exist, got %d", rr.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	token := signUp(t, srv, "ada@example.com")

	do(t, srv, http.MethodPost, "/api/budgets", `{"category":"Food","amount":"100","month":"March","year":"2024"}`, token)
	do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2024-03-05","type":"Expenditure","name":"Lunch","category":"Food","method":"Cash","amount":"40"}`, token)

	rr, env := do(t, srv, http.MethodGet, "/api/analytics/budget-total?month=March&year=2024", "", token)
	if rr.Code != http.StatusOK || strings.Trim(string(env.Data), `"`) != "100" {
		t.Errorf("budget total status=%d data=%s", rr.Code, env.Data)
	}

	rr, env = do(t, srv, http.MethodGet, "/api/analytics/budget-comparison?month=3&year=2024", "", token)
	if rr.Code != http.StatusOK || !strings.Contains(string(env.Data), "Food") {
		t.Errorf("comparison status=%d data=%s", rr.Code, env.Data)
	}

	rr, _ = do(t, srv, http.MethodGet, "/api/analytics/methods?month=March", "", token)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("period without year status=%d", rr.Code)
	}

	rr, _ = do(t, srv, http.MethodGet, "/api/analytics/yearly?year=2024&type=Gift", "", token)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad type status=%d", rr.Code)
	}

	rr, _ = do(t, srv, http.MethodGet, "/api/analytics/yearly?year=2024", "", token)
	if rr.Code != http.StatusOK {
		t.Errorf("yearly status=%d", rr.Code)
	}

	rr, env = do(t, srv, http.MethodGet, "/api/analytics/monthly?year=2024", "", token)
	if rr.Code != http.StatusOK || !strings.Contains(string(env.Data), `"expenditure"`) {
		t.Errorf("monthly status=%d data=%s", rr.Code, env.Data)
	}

	rr, _ = do(t, srv, http.MethodGet, "/api/analytics/monthly?year=abcd", "", token)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("monthly bad year status=%d", rr.Code)
	}

	rr, _ = do(t, srv, http.MethodGet, "/api/analytics/assets-total", "", token)
	if rr.Code != http.StatusOK {
		t.Errorf("assets total status=%d", rr.Code)
	}
}

func TestFormSchemaEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rr, env := do(t, srv, http.MethodGet, "/api/forms/transaction", "", "")
	if rr.Code != http.StatusOK || !env.Success {
		t.Fatalf("schema status=%d success=%v", rr.Code, env.Success)
	}
	var schema struct {
		Type   string `json:"type"`
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(env.Data, &schema); err != nil {
		t.Fatalf("decode schema: %v (%s)", err, env.Data)
	}
	var names []string
	for _, f := range schema.Fields {
		names = append(names, f.Name)
	}
	if !slices.Contains(names, "category") || !slices.Contains(names, "amount") {
		t.Errorf("schema fields = %v", names)
	}

	rr, env = do(t, srv, http.MethodGet, "/api/forms/unknown", "", "")
	if rr.Code != http.StatusNotFound || env.Success {
		t.Errorf("unknown schema status=%d success=%v", rr.Code, env.Success)
	}
}
