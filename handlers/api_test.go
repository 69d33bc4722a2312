package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"gorm.io/driver/sqlite"

	"github.com/taskdesk/backend/database"
	"github.com/taskdesk/backend/services"
)

func newTestRouter(t *testing.T, name string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	users := services.NewUserService(db, nil)
	tasks := services.NewTaskService(db, nil)
	if err := users.SeedAdmin(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return NewRouter(New(users, tasks))
}

// session carries cookies between requests, like a browser would.
type session struct {
	cookies []*http.Cookie
}

func do(t *testing.T, router *gin.Engine, sess *session, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		for _, c := range sess.cookies {
			req.AddCookie(c)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if sess != nil {
		if cs := w.Result().Cookies(); len(cs) > 0 {
			sess.cookies = cs
		}
	}
	return w
}

func login(t *testing.T, router *gin.Engine, username, password string) *session {
	t.Helper()
	sess := &session{}
	w := do(t, router, sess, http.MethodPost, "/login", gin.H{"username": username, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	return sess
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestSignupAndLogin(t *testing.T) {
	router := newTestRouter(t, "apisignup")

	w := do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "alice", "password": "pw1"})
	if w.Code != http.StatusOK {
		t.Fatalf("signup: status %d, body %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["employeeId"]; got != "EMP001" {
		t.Fatalf("signup badge = %v, want EMP001", got)
	}

	// Duplicate username conflicts.
	w = do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "alice", "password": "pw2"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: status %d", w.Code)
	}

	// Missing fields are a validation error.
	w = do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "nobody"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("signup without password: status %d", w.Code)
	}

	// Bad password and unknown user fail with the same response.
	wrongPw := do(t, router, nil, http.MethodPost, "/login", gin.H{"username": "alice", "password": "nope"})
	unknown := do(t, router, nil, http.MethodPost, "/login", gin.H{"username": "ghost", "password": "pw1"})
	if wrongPw.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("bad logins: %d, %d", wrongPw.Code, unknown.Code)
	}
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Fatalf("login failures distinguishable: %q vs %q", wrongPw.Body.String(), unknown.Body.String())
	}

	sess := login(t, router, "alice", "pw1")
	w = do(t, router, sess, http.MethodGet, "/me", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d", w.Code)
	}
	me := decode(t, w)
	if me["username"] != "alice" || me["role"] != "employee" || me["employeeId"] != "EMP001" {
		t.Fatalf("unexpected identity: %v", me)
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t, "apitasks")

	do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "alice", "password": "pw1"})
	do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "bob", "password": "pw2"})

	admin := login(t, router, "admin", "admin123")
	w := do(t, router, admin, http.MethodPost, "/admin/assign-task", gin.H{
		"title":       "Fix bug",
		"description": "repro steps attached",
		"employeeId":  "EMP001",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("assign: status %d, body %s", w.Code, w.Body.String())
	}
	taskID := decode(t, w)["taskId"].(float64)
	if taskID != 1 {
		t.Fatalf("task id = %v, want 1", taskID)
	}

	// Unknown badge fails before anything is written.
	w = do(t, router, admin, http.MethodPost, "/admin/assign-task", gin.H{
		"title": "Orphan", "employeeId": "EMP999",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("assign to unknown badge: status %d", w.Code)
	}

	alice := login(t, router, "alice", "pw1")
	w = do(t, router, alice, http.MethodGet, "/tasks", nil)
	var mine []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(mine) != 1 || mine[0]["status"] != "Assigned" {
		t.Fatalf("alice tasks before submit: %v", mine)
	}

	// Bob cannot complete alice's task and cannot tell it exists.
	bob := login(t, router, "bob", "pw2")
	w = do(t, router, bob, http.MethodPost, "/employee/submit-task", gin.H{"taskId": taskID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bob submitting alice's task: status %d", w.Code)
	}

	w = do(t, router, alice, http.MethodPost, "/employee/submit-task", gin.H{"taskId": taskID})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status %d, body %s", w.Code, w.Body.String())
	}

	// Exactly once.
	w = do(t, router, alice, http.MethodPost, "/employee/submit-task", gin.H{"taskId": taskID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second submit: status %d", w.Code)
	}

	// Admin sees the completed task with display names joined in.
	w = do(t, router, admin, http.MethodGet, "/tasks", nil)
	var all []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode admin tasks: %v", err)
	}
	if len(all) != 1 || all[0]["status"] != "Completed" {
		t.Fatalf("admin listing: %v", all)
	}
	assignee, _ := all[0]["assignedToUser"].(map[string]interface{})
	if assignee == nil || assignee["username"] != "alice" {
		t.Fatalf("admin listing missing assignee: %v", all[0])
	}

	// Bob's listing stays empty.
	w = do(t, router, bob, http.MethodGet, "/tasks", nil)
	var bobs []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &bobs); err != nil {
		t.Fatalf("decode bob tasks: %v", err)
	}
	if len(bobs) != 0 {
		t.Fatalf("bob sees %d tasks", len(bobs))
	}
}

func TestRoleGates(t *testing.T) {
	router := newTestRouter(t, "apigates")

	do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "alice", "password": "pw1"})

	// Anonymous callers are rejected everywhere behind the gate.
	for _, path := range []string{"/me", "/tasks", "/admin/employees"} {
		if w := do(t, router, nil, http.MethodGet, path, nil); w.Code != http.StatusForbidden {
			t.Fatalf("anonymous GET %s: status %d", path, w.Code)
		}
	}

	alice := login(t, router, "alice", "pw1")
	if w := do(t, router, alice, http.MethodGet, "/admin/employees", nil); w.Code != http.StatusForbidden {
		t.Fatalf("employee on admin route: status %d", w.Code)
	}

	admin := login(t, router, "admin", "admin123")
	if w := do(t, router, admin, http.MethodPost, "/employee/submit-task", gin.H{"taskId": 1}); w.Code != http.StatusForbidden {
		t.Fatalf("admin on employee route: status %d", w.Code)
	}
}

func TestPromoteOverHTTP(t *testing.T) {
	router := newTestRouter(t, "apipromote")

	do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "carol", "password": "pw1"})

	admin := login(t, router, "admin", "admin123")
	for i := 0; i < 2; i++ {
		w := do(t, router, admin, http.MethodPost, "/admin/promote", gin.H{"employeeId": "EMP001"})
		if w.Code != http.StatusOK {
			t.Fatalf("promote attempt %d: status %d, body %s", i+1, w.Code, w.Body.String())
		}
	}

	if w := do(t, router, admin, http.MethodPost, "/admin/promote", gin.H{"employeeId": "EMP999"}); w.Code != http.StatusBadRequest {
		t.Fatalf("promote unknown badge: status %d", w.Code)
	}

	// Carol now holds the admin role and passes the admin gate.
	carol := login(t, router, "carol", "pw1")
	if w := do(t, router, carol, http.MethodGet, "/admin/employees", nil); w.Code != http.StatusOK {
		t.Fatalf("promoted carol on admin route: status %d", w.Code)
	}
}

func TestCreateEmployeeAndList(t *testing.T) {
	router := newTestRouter(t, "apiemployees")

	admin := login(t, router, "admin", "admin123")
	w := do(t, router, admin, http.MethodPost, "/admin/create-employee", gin.H{"username": "dave", "password": "pw1"})
	if w.Code != http.StatusOK {
		t.Fatalf("create employee: status %d, body %s", w.Code, w.Body.String())
	}
	if badge := decode(t, w)["employeeId"]; badge != "EMP001" {
		t.Fatalf("created badge = %v", badge)
	}

	do(t, router, admin, http.MethodPost, "/admin/assign-task", gin.H{
		"title": "Inventory check", "employeeId": "EMP001",
	})

	w = do(t, router, admin, http.MethodGet, "/admin/employees?include_tasks=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list employees: status %d", w.Code)
	}
	var employees []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &employees); err != nil {
		t.Fatalf("decode employees: %v", err)
	}
	if len(employees) != 1 || employees[0]["username"] != "dave" {
		t.Fatalf("unexpected listing: %v", employees)
	}
	if _, leaked := employees[0]["passwordHash"]; leaked {
		t.Fatal("password hash leaked in listing")
	}
	tasks, _ := employees[0]["tasks"].([]interface{})
	if len(tasks) != 1 {
		t.Fatalf("include_tasks listing: %v", employees[0])
	}
}

func TestLogoutEndsSession(t *testing.T) {
	router := newTestRouter(t, "apilogout")

	do(t, router, nil, http.MethodPost, "/signup", gin.H{"username": "alice", "password": "pw1"})
	sess := login(t, router, "alice", "pw1")

	if w := do(t, router, sess, http.MethodGet, "/me", nil); w.Code != http.StatusOK {
		t.Fatalf("me while logged in: status %d", w.Code)
	}

	if w := do(t, router, sess, http.MethodPost, "/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}

	if w := do(t, router, sess, http.MethodGet, "/me", nil); w.Code != http.StatusForbidden {
		t.Fatalf("me after logout: status %d", w.Code)
	}
}
