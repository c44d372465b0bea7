package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yewon-dev/gongjucal/internal/database"
	"github.com/yewon-dev/gongjucal/internal/model"
	"github.com/yewon-dev/gongjucal/internal/session"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db, "test-secret", false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := srv.UserStore().SeedRoster(); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
	return srv.Router()
}

func login(t *testing.T, router http.Handler, username, password string) (string, int) {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return "", rec.Code
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken, rec.Code
}

func apiRequest(router http.Handler, token, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookies(t *testing.T, token, username, color string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	session.NewCookieStore(false).Save(rec, model.Session{Token: token, Username: username, Color: color})
	return rec.Result().Cookies()
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := setupRouter(t)

	if _, code := login(t, router, "ahyeon", "not-ahyeon"); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", code, http.StatusUnauthorized)
	}
	if _, code := login(t, router, "nobody", "nobody"); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", code, http.StatusUnauthorized)
	}
}

func TestEventLifecycleOverAPI(t *testing.T) {
	router := setupRouter(t)

	token, code := login(t, router, "ahyeon", "ahyeon")
	if code != http.StatusOK {
		t.Fatalf("login status = %d", code)
	}

	// Starts empty.
	rec := apiRequest(router, token, "GET", "/events", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("initial list = %d %q", rec.Code, rec.Body.String())
	}

	// Create, then a fresh fetch must show exactly that event.
	rec = apiRequest(router, token, "POST", "/events", `{"title":"생일","date":"2025-06-10T09:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = apiRequest(router, token, "GET", "/events", "")
	var events []model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(events) != 1 || events[0].Title != "생일" {
		t.Fatalf("list after create = %+v, want exactly 생일", events)
	}

	// Another roster member may read but not mutate it.
	otherToken, _ := login(t, router, "dasol", "dasol")
	rec = apiRequest(router, otherToken, "PUT", "/events/1", `{"title":"탈취","date":"2025-06-10T09:00:00Z"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign update status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	rec = apiRequest(router, otherToken, "DELETE", "/events/1", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign delete status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	// Owner updates, then deletes; the list resynchronizes each time.
	rec = apiRequest(router, token, "PUT", "/events/1", `{"title":"생일 파티","date":"2025-06-11T18:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = apiRequest(router, token, "DELETE", "/events/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = apiRequest(router, token, "GET", "/events", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("list after delete = %q, want []", rec.Body.String())
	}
}

func TestEventsRequireToken(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest("GET", "/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCalendarRedirectsWithoutSession(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest("GET", "/calendar", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}

func TestCalendarPageShowsOwnedChipAffordances(t *testing.T) {
	router := setupRouter(t)

	token, _ := login(t, router, "ahyeon", "ahyeon")
	apiRequest(router, token, "POST", "/events", `{"title":"생일","date":"2025-06-10T09:00:00Z"}`)

	// Owner sees the chip with a delete affordance.
	req := httptest.NewRequest("GET", "/calendar?month=2025-06", nil)
	for _, c := range sessionCookies(t, token, "ahyeon", "#6366F1") {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "생일") {
		t.Error("expected the event chip in the owner's month view")
	}
	if !strings.Contains(body, "hx-delete") {
		t.Error("expected a delete affordance on the owner's chip")
	}
	if !strings.Contains(body, "2025년 6월") {
		t.Error("expected the month title")
	}

	// Another user sees the chip but no edit/delete affordances.
	otherToken, _ := login(t, router, "dasol", "dasol")
	req = httptest.NewRequest("GET", "/calendar?month=2025-06", nil)
	for _, c := range sessionCookies(t, otherToken, "dasol", "#8B5CF6") {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body = rec.Body.String()
	if !strings.Contains(body, "생일") {
		t.Error("expected the event chip in the other user's month view")
	}
	if strings.Contains(body, "hx-delete") {
		t.Error("other users must not get delete affordances")
	}
}

func TestRootRedirectsToCalendar(t *testing.T) {
	router := setupRouter(t)

	token, _ := login(t, router, "sion", "sion")
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range sessionCookies(t, token, "sion", "#10B981") {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/calendar" {
		t.Errorf("Location = %q, want %q", loc, "/calendar")
	}
}
