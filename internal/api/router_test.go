package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"sincelast/internal/bootstrap/config"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "sincelast/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "sincelast/internal/infrastructure/persistence/sqlite/uow"
	"sincelast/internal/usecase/auth"
	"sincelast/internal/usecase/tracker"
)

func setupServer(t *testing.T) (*httptest.Server, *auth.Service, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "api.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.User{}, &model.Category{}, &model.Issue{}, &model.Solution{}, &model.Accident{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	trackerSvc := tracker.NewService(
		sqliterepo.NewIssueRepository(db),
		sqliterepo.NewSolutionRepository(db),
		sqliterepo.NewCategoryRepository(db),
		sqliterepo.NewAccidentRepository(db),
		sqliteuow.NewUnitOfWork(db),
	)
	authSvc := auth.NewService(sqliterepo.NewUserRepository(db), auth.NewSessionCodec("test-secret"), 4)

	cfg := config.Config{}
	cfg.App.Env = "local"
	cfg.Pagination.DefaultLimit = 20
	cfg.Pagination.MaxLimit = 100

	ts := httptest.NewServer(NewServer(trackerSvc, authSvc, cfg).Router())
	t.Cleanup(ts.Close)
	return ts, authSvc, db
}

func registerUser(t *testing.T, authSvc *auth.Service, username string, role domain.Role) {
	t.Helper()
	if _, err := authSvc.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password1",
		Role:     role,
	}); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

func login(t *testing.T, ts *httptest.Server, username, password string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(ts.URL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	t.Fatal("login response carried no session cookie")
	return nil
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, cookie *http.Cookie, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	ts, _, _ := setupServer(t)

	for _, path := range []string{"/dashboard", "/issues", "/categories", "/accidents"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("GET %s status = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestLoginGrantsAccess(t *testing.T) {
	ts, authSvc, _ := setupServer(t)
	registerUser(t, authSvc, "john.doe", domain.RoleUser)

	cookie := login(t, ts, "john.doe", "password1")

	resp := doJSON(t, ts, http.MethodGet, "/dashboard", cookie, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", resp.StatusCode)
	}

	var stats tracker.DashboardStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if stats.Overview.DaysSinceLastAccident != nil {
		t.Fatalf("days = %d, want null with no accidents", *stats.Overview.DaysSinceLastAccident)
	}
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	ts, authSvc, _ := setupServer(t)
	registerUser(t, authSvc, "john.doe", domain.RoleUser)

	body, _ := json.Marshal(map[string]string{"username": "john.doe", "password": "nope"})
	resp, err := http.Post(ts.URL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", resp.StatusCode)
	}
	if len(resp.Cookies()) != 0 {
		t.Fatalf("failed login set cookies: %+v", resp.Cookies())
	}
}

func TestIssueDeletionIsAdminOnly(t *testing.T) {
	ts, authSvc, _ := setupServer(t)
	registerUser(t, authSvc, "admin", domain.RoleAdmin)
	registerUser(t, authSvc, "john.doe", domain.RoleUser)

	userCookie := login(t, ts, "john.doe", "password1")

	resp := doJSON(t, ts, http.MethodPost, "/issues", userCookie, map[string]any{
		"title":       "broken build",
		"description": "make fails on main",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create issue status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		IssueID uint64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode issue: %v", err)
	}
	resp.Body.Close()

	path := fmt.Sprintf("/issues/%d", created.IssueID)
	resp = doJSON(t, ts, http.MethodDelete, path, userCookie, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user delete status = %d, want 403", resp.StatusCode)
	}

	adminCookie := login(t, ts, "admin", "password1")
	resp = doJSON(t, ts, http.MethodDelete, path, adminCookie, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin delete status = %d, want 204", resp.StatusCode)
	}
}

func TestStaleSessionIsClearedAndAnonymous(t *testing.T) {
	ts, authSvc, _ := setupServer(t)

	// Signed session over a user that does not exist.
	value, err := authSvc.Sessions().Encode(999)
	if err != nil {
		t.Fatalf("encode ghost session: %v", err)
	}

	resp := doJSON(t, ts, http.MethodGet, "/dashboard", &http.Cookie{Name: auth.CookieName, Value: value}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("ghost session status = %d, want 401", resp.StatusCode)
	}

	cleared := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("stale session cookie was not cleared")
	}
}

func TestCreateIssueValidationErrors(t *testing.T) {
	ts, authSvc, _ := setupServer(t)
	registerUser(t, authSvc, "john.doe", domain.RoleUser)
	cookie := login(t, ts, "john.doe", "password1")

	resp := doJSON(t, ts, http.MethodPost, "/issues", cookie, map[string]any{
		"title":       "",
		"description": "",
		"severity":    "catastrophic",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var payload struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode validation payload: %v", err)
	}
	// All violations accumulate in one response.
	if len(payload.Errors) != 3 {
		t.Fatalf("errors = %+v, want title, description, severity", payload.Errors)
	}
}

func createCategory(t *testing.T, ts *httptest.Server, cookie *http.Cookie, name string) uint64 {
	t.Helper()
	resp := doJSON(t, ts, http.MethodPost, "/categories", cookie, map[string]any{
		"name":  name,
		"color": "#FF5733",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		CategoryID uint64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode category: %v", err)
	}
	return created.CategoryID
}

func TestIssueResponseUsesCamelCaseKeys(t *testing.T) {
	ts, authSvc, _ := setupServer(t)
	registerUser(t, authSvc, "john.doe", domain.RoleUser)
	cookie := login(t, ts, "john.doe", "password1")

	resp := doJSON(t, ts, http.MethodPost, "/issues", cookie, map[string]any{
		"title":       "wire shape",
		"description": "d",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create issue status = %d, want 201", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode issue: %v", err)
	}
	for _, key := range []string{"id", "title", "categoryId", "createdBy", "createdAt", "updatedAt", "resolvedAt"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("issue body missing %q, keys = %v", key, rawKeys(raw))
		}
	}
	if _, ok := raw["IssueID"]; ok {
		t.Fatal("issue body leaks Go field names")
	}
}

func rawKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestUpdateIssueNullCategoryDetaches(t *testing.T) {
	ts, authSvc, _ := setupServer(t)
	registerUser(t, authSvc, "john.doe", domain.RoleUser)
	cookie := login(t, ts, "john.doe", "password1")

	categoryID := createCategory(t, ts, cookie, "Build Issues")

	resp := doJSON(t, ts, http.MethodPost, "/issues", cookie, map[string]any{
		"title":       "flaky runner",
		"description": "d",
		"categoryId":  categoryID,
	})
	var issue struct {
		IssueID    uint64  `json:"id"`
		CategoryID *uint64 `json:"categoryId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		t.Fatalf("decode issue: %v", err)
	}
	resp.Body.Close()
	if issue.CategoryID == nil {
		t.Fatal("issue created without its category")
	}

	path := fmt.Sprintf("/issues/%d", issue.IssueID)

	// Omitting the key leaves the category alone.
	resp = doJSON(t, ts, http.MethodPut, path, cookie, map[string]any{"title": "renamed"})
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	resp.Body.Close()
	if issue.CategoryID == nil || *issue.CategoryID != categoryID {
		t.Fatalf("category after omitted key = %v, want %d", issue.CategoryID, categoryID)
	}

	// An explicit null detaches it.
	resp = doJSON(t, ts, http.MethodPut, path, cookie, map[string]any{"categoryId": nil})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("null category status = %d, want 200", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		t.Fatalf("decode detach: %v", err)
	}
	resp.Body.Close()
	if issue.CategoryID != nil {
		t.Fatalf("category after null = %d, want detached", *issue.CategoryID)
	}
}

func TestCreateIssuePartialCompletionReturnsIssue(t *testing.T) {
	ts, authSvc, db := setupServer(t)
	registerUser(t, authSvc, "john.doe", domain.RoleUser)
	cookie := login(t, ts, "john.doe", "password1")

	categoryID := createCategory(t, ts, cookie, "Deployment")

	// Make the follow-up accident insert fail while the issue insert
	// still succeeds.
	if err := db.Exec("DROP TABLE accidents").Error; err != nil {
		t.Fatalf("drop accidents: %v", err)
	}

	resp := doJSON(t, ts, http.MethodPost, "/issues", cookie, map[string]any{
		"title":       "prod deploy down",
		"description": "d",
		"categoryId":  categoryID,
		"severity":    "critical",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	var payload struct {
		Error errorBody `json:"error"`
		Issue *struct {
			IssueID uint64 `json:"id"`
		} `json:"issue"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode partial response: %v", err)
	}
	if payload.Error.Message == "" {
		t.Fatal("partial response carried no error")
	}
	if payload.Issue == nil || payload.Issue.IssueID == 0 {
		t.Fatalf("partial response issue = %+v, want created issue", payload.Issue)
	}

	// The issue row really exists despite the failure.
	resp = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/issues/%d", payload.Issue.IssueID), cookie, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch created issue status = %d, want 200", resp.StatusCode)
	}
}
