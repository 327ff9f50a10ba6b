package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-password"
	testPassword      = "password123"
)

type testAPI struct {
	t          *testing.T
	server     *httptest.Server
	users      service.UserService
	adminToken string
}

type loggedInUser struct {
	ID    string
	Email string
	Token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:     "test-secret-that-is-at-least-32-characters",
		TokenLifetime: time.Hour,
	})
	require.NoError(t, err)

	notifications := service.NewNotificationService(memory.NewNotificationStore(), nil, log)
	users := service.NewUserService(memory.NewUserStore(), auth.NewBcryptHasher(bcrypt.MinCost), jwtService, notifications, log)
	tasks := service.NewTaskService(memory.NewTaskStore(), notifications, log)

	authHandler := NewAuthHandler(users, log)
	taskHandler := NewTaskHandler(tasks, log)
	notificationHandler := NewNotificationHandler(notifications, log)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/auth/users", authHandler.ListUsers)
				r.Put("/auth/users/approve", authHandler.ApproveUser)
			})
			r.Put("/auth/{email}", authHandler.UpdatePassword)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/user/{userId}", taskHandler.ListUserTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)

			r.Get("/notifications/{userId}", notificationHandler.List)
			r.Delete("/notifications/{userId}", notificationHandler.Clear)
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	_, err = users.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword)
	require.NoError(t, err)

	api := &testAPI{t: t, server: server, users: users}
	var login LoginResponse
	api.decode(api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: testAdminEmail, Password: testAdminPassword,
	}), http.StatusOK, &login)
	api.adminToken = login.Token
	return api
}

func (a *testAPI) do(method, path, token string, body interface{}) *http.Response {
	a.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testAPI) decode(resp *http.Response, wantStatus int, v interface{}) {
	a.t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	require.Equal(a.t, wantStatus, resp.StatusCode, "body: %s", body)
	if v != nil {
		require.NoError(a.t, json.Unmarshal(body, v))
	}
}

func (a *testAPI) expectError(resp *http.Response, wantStatus int) shared.ErrorResponse {
	a.t.Helper()

	var errResp shared.ErrorResponse
	a.decode(resp, wantStatus, &errResp)
	assert.NotEmpty(a.t, errResp.Error)
	assert.NotEmpty(a.t, errResp.TraceID)
	return errResp
}

// signUp registers, approves and logs in a user.
func (a *testAPI) signUp(email string) loggedInUser {
	a.t.Helper()

	var registered UserResponse
	a.decode(a.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Test User", Email: email, Password: testPassword,
	}), http.StatusCreated, &registered)

	a.decode(a.do(http.MethodPut, "/api/auth/users/approve", a.adminToken, ApproveUserRequest{Email: email}),
		http.StatusOK, nil)

	var login LoginResponse
	a.decode(a.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: email, Password: testPassword,
	}), http.StatusOK, &login)

	return loggedInUser{ID: registered.ID.String(), Email: registered.Email, Token: login.Token}
}

func (a *testAPI) createTask(u loggedInUser, name, category, priority, deadline string) *domain.Task {
	a.t.Helper()

	var task domain.Task
	a.decode(a.do(http.MethodPost, "/api/tasks", u.Token, CreateTaskRequest{
		Name:        name,
		Description: "description of " + name,
		Category:    category,
		Priority:    priority,
		Deadline:    deadline,
		UserID:      u.ID,
	}), http.StatusCreated, &task)
	return &task
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	var registered UserResponse
	api.decode(api.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Alice", Email: "Alice@Example.com", Password: testPassword,
	}), http.StatusCreated, &registered)
	assert.Equal(t, "alice@example.com", registered.Email)
	assert.False(t, registered.Approved)
	assert.Equal(t, domain.RoleUser, registered.Role)

	t.Run("duplicate email", func(t *testing.T) {
		errResp := api.expectError(api.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Name: "Alice", Email: "alice@example.com", Password: testPassword,
		}), http.StatusConflict)
		assert.Equal(t, "Email already exists", errResp.Error)
	})

	t.Run("short password", func(t *testing.T) {
		api.expectError(api.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Name: "Bob", Email: "bob@example.com", Password: "short",
		}), http.StatusBadRequest)
	})

	t.Run("missing fields", func(t *testing.T) {
		api.expectError(api.do(http.MethodPost, "/api/auth/register", "", `{"email":"x@example.com"}`),
			http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		api.expectError(api.do(http.MethodPost, "/api/auth/register", "", `{"email":`), http.StatusBadRequest)
	})

	t.Run("login before approval", func(t *testing.T) {
		errResp := api.expectError(api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
			Email: "alice@example.com", Password: testPassword,
		}), http.StatusForbidden)
		assert.Equal(t, "Account is awaiting admin approval", errResp.Error)
	})

	t.Run("wrong password", func(t *testing.T) {
		errResp := api.expectError(api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
			Email: "alice@example.com", Password: "wrong-password",
		}), http.StatusUnauthorized)
		assert.Equal(t, "Invalid email or password", errResp.Error)
	})

	t.Run("unknown email", func(t *testing.T) {
		api.expectError(api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
			Email: "nobody@example.com", Password: testPassword,
		}), http.StatusUnauthorized)
	})
}

func TestAuthHandler_Login_ReturnsTokenAndUser(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	user := api.signUp("carol@example.com")

	var login LoginResponse
	api.decode(api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "CAROL@example.com", Password: testPassword,
	}), http.StatusOK, &login)

	assert.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID.String())
	assert.True(t, login.User.Approved)
	expiresAt, err := time.Parse(time.RFC3339, login.ExpiresAt)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))
}

func TestAuthHandler_AdminRoutes(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	user := api.signUp("dave@example.com")

	t.Run("admin lists users", func(t *testing.T) {
		var users []UserResponse
		api.decode(api.do(http.MethodGet, "/api/auth/users", api.adminToken, nil), http.StatusOK, &users)
		assert.Len(t, users, 2)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		api.expectError(api.do(http.MethodGet, "/api/auth/users", user.Token, nil), http.StatusForbidden)
		api.expectError(api.do(http.MethodPut, "/api/auth/users/approve", user.Token,
			ApproveUserRequest{Email: user.Email}), http.StatusForbidden)
	})

	t.Run("no token", func(t *testing.T) {
		api.expectError(api.do(http.MethodGet, "/api/auth/users", "", nil), http.StatusUnauthorized)
	})

	t.Run("approve unknown user", func(t *testing.T) {
		api.expectError(api.do(http.MethodPut, "/api/auth/users/approve", api.adminToken,
			ApproveUserRequest{Email: "ghost@example.com"}), http.StatusNotFound)
	})

	t.Run("approve twice", func(t *testing.T) {
		errResp := api.expectError(api.do(http.MethodPut, "/api/auth/users/approve", api.adminToken,
			ApproveUserRequest{Email: user.Email}), http.StatusConflict)
		assert.Equal(t, "User is already approved", errResp.Error)
	})

	t.Run("approve without email", func(t *testing.T) {
		api.expectError(api.do(http.MethodPut, "/api/auth/users/approve", api.adminToken, `{}`),
			http.StatusBadRequest)
	})
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	erin := api.signUp("erin@example.com")
	frank := api.signUp("frank@example.com")

	t.Run("self update", func(t *testing.T) {
		var msg shared.MessageResponse
		api.decode(api.do(http.MethodPut, "/api/auth/erin@example.com", erin.Token,
			UpdatePasswordRequest{Password: "new-password-1"}), http.StatusOK, &msg)
		assert.Equal(t, "Password updated successfully", msg.Message)

		api.decode(api.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
			Email: erin.Email, Password: "new-password-1",
		}), http.StatusOK, nil)

		var notifications []*domain.Notification
		api.decode(api.do(http.MethodGet, "/api/notifications/"+erin.ID, erin.Token, nil),
			http.StatusOK, &notifications)
		require.Len(t, notifications, 1)
		assert.Equal(t, domain.NotificationTypeProfile, notifications[0].Type)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		api.expectError(api.do(http.MethodPut, "/api/auth/erin@example.com", frank.Token,
			UpdatePasswordRequest{Password: "hijacked-password"}), http.StatusForbidden)
	})

	t.Run("admin may update anyone", func(t *testing.T) {
		api.decode(api.do(http.MethodPut, "/api/auth/frank@example.com", api.adminToken,
			UpdatePasswordRequest{Password: "reset-by-admin"}), http.StatusOK, nil)
	})

	t.Run("unknown email", func(t *testing.T) {
		api.expectError(api.do(http.MethodPut, "/api/auth/ghost@example.com", api.adminToken,
			UpdatePasswordRequest{Password: "whatever-password"}), http.StatusNotFound)
	})

	t.Run("too short", func(t *testing.T) {
		api.expectError(api.do(http.MethodPut, "/api/auth/frank@example.com", frank.Token,
			UpdatePasswordRequest{Password: "short"}), http.StatusBadRequest)
	})
}

func TestTaskHandler_Lifecycle(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	owner := api.signUp("owner@example.com")
	other := api.signUp("other@example.com")

	task := api.createTask(owner, "Write report", "Work", "High", "2030-01-15")
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, owner.ID, task.UserID.String())

	t.Run("get", func(t *testing.T) {
		var got domain.Task
		api.decode(api.do(http.MethodGet, "/api/tasks/"+task.ID.String(), owner.Token, nil), http.StatusOK, &got)
		assert.Equal(t, "Write report", got.Name)
	})

	t.Run("get as another user", func(t *testing.T) {
		api.expectError(api.do(http.MethodGet, "/api/tasks/"+task.ID.String(), other.Token, nil),
			http.StatusForbidden)
	})

	t.Run("get as admin", func(t *testing.T) {
		api.decode(api.do(http.MethodGet, "/api/tasks/"+task.ID.String(), api.adminToken, nil),
			http.StatusOK, nil)
	})

	t.Run("update", func(t *testing.T) {
		var resp UpdateTaskResponse
		api.decode(api.do(http.MethodPut, "/api/tasks/"+task.ID.String(), owner.Token,
			`{"status":"Completed","name":"Write final report"}`), http.StatusOK, &resp)
		assert.Equal(t, "Task updated successfully", resp.Message)
		require.NotNil(t, resp.UpdatedTask)
		assert.Equal(t, domain.StatusCompleted, resp.UpdatedTask.Status)
		assert.Equal(t, "Write final report", resp.UpdatedTask.Name)
		assert.Equal(t, domain.PriorityHigh, resp.UpdatedTask.Priority)
	})

	t.Run("update with invalid status", func(t *testing.T) {
		api.expectError(api.do(http.MethodPut, "/api/tasks/"+task.ID.String(), owner.Token,
			`{"status":"Done"}`), http.StatusBadRequest)
	})

	t.Run("update with no fields", func(t *testing.T) {
		api.expectError(api.do(http.MethodPut, "/api/tasks/"+task.ID.String(), owner.Token, `{}`),
			http.StatusBadRequest)
	})

	t.Run("delete", func(t *testing.T) {
		var msg shared.MessageResponse
		api.decode(api.do(http.MethodDelete, "/api/tasks/"+task.ID.String(), owner.Token, nil),
			http.StatusOK, &msg)
		assert.Equal(t, "Task deleted successfully", msg.Message)

		errResp := api.expectError(api.do(http.MethodGet, "/api/tasks/"+task.ID.String(), owner.Token, nil),
			http.StatusNotFound)
		assert.Equal(t, "Task not found", errResp.Error)
		api.expectError(api.do(http.MethodDelete, "/api/tasks/"+task.ID.String(), owner.Token, nil),
			http.StatusNotFound)
		api.expectError(api.do(http.MethodPut, "/api/tasks/"+task.ID.String(), owner.Token,
			`{"name":"x"}`), http.StatusNotFound)
	})

	t.Run("notifications record each change", func(t *testing.T) {
		var notifications []*domain.Notification
		api.decode(api.do(http.MethodGet, "/api/notifications/"+owner.ID, owner.Token, nil),
			http.StatusOK, &notifications)
		require.Len(t, notifications, 3)
		assert.Equal(t, "New Task Added: Write report", notifications[0].Message)
		assert.Equal(t, domain.NotificationTypeTaskUpdated, notifications[1].Type)
		assert.Equal(t, domain.NotificationTypeTaskDeleted, notifications[2].Type)
	})
}

func TestTaskHandler_CreateTask_Rejections(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	owner := api.signUp("owner@example.com")
	other := api.signUp("other@example.com")

	valid := func() CreateTaskRequest {
		return CreateTaskRequest{
			Name: "Task", Description: "Desc", Category: "Work",
			Priority: "Low", Deadline: "2030-01-01", UserID: owner.ID,
		}
	}

	tests := []struct {
		name   string
		token  string
		mutate func(*CreateTaskRequest)
		status int
	}{
		{"missing name", owner.Token, func(r *CreateTaskRequest) { r.Name = "" }, http.StatusBadRequest},
		{"invalid priority", owner.Token, func(r *CreateTaskRequest) { r.Priority = "Urgent" }, http.StatusBadRequest},
		{"invalid deadline", owner.Token, func(r *CreateTaskRequest) { r.Deadline = "next week" }, http.StatusBadRequest},
		{"invalid user id", owner.Token, func(r *CreateTaskRequest) { r.UserID = "not-a-uuid" }, http.StatusBadRequest},
		{"for another user", other.Token, func(*CreateTaskRequest) {}, http.StatusForbidden},
		{"no token", "", func(*CreateTaskRequest) {}, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			api.expectError(api.do(http.MethodPost, "/api/tasks", tc.token, req), tc.status)
		})
	}

	t.Run("admin may create for any user", func(t *testing.T) {
		api.decode(api.do(http.MethodPost, "/api/tasks", api.adminToken, valid()), http.StatusCreated, nil)
	})
}

func TestTaskHandler_GetTask_InvalidID(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	owner := api.signUp("owner@example.com")

	api.expectError(api.do(http.MethodGet, "/api/tasks/not-a-uuid", owner.Token, nil), http.StatusBadRequest)
}

func TestTaskHandler_ListUserTasks(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	owner := api.signUp("owner@example.com")
	other := api.signUp("other@example.com")

	api.createTask(owner, "Groceries", "Home", "Low", "2030-03-01")
	api.createTask(owner, "Quarterly report", "Work", "High", "2030-01-15T09:30:00Z")
	api.createTask(owner, "Team offsite", "Work", "Medium", "2030-02-01")
	api.createTask(other, "Someone else's", "Work", "High", "2030-01-01")

	list := func(query string) []domain.Task {
		var tasks []domain.Task
		api.decode(api.do(http.MethodGet, "/api/tasks/user/"+owner.ID+query, owner.Token, nil),
			http.StatusOK, &tasks)
		return tasks
	}
	names := func(tasks []domain.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Name)
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all in creation order", "", []string{"Groceries", "Quarterly report", "Team offsite"}},
		{"by category", "?category=Work", []string{"Quarterly report", "Team offsite"}},
		{"by priority", "?priority=High", []string{"Quarterly report"}},
		{"unknown priority", "?priority=Urgent", []string{}},
		{"search is case-insensitive", "?search=REPORT", []string{"Quarterly report"}},
		{"by deadline day", "?date=2030-01-15", []string{"Quarterly report"}},
		{"deadline ascending", "?deadlineSort=asc", []string{"Quarterly report", "Team offsite", "Groceries"}},
		{"deadline descending", "?deadlineSort=desc", []string{"Groceries", "Team offsite", "Quarterly report"}},
		{"combined", "?category=Work&deadlineSort=desc", []string{"Team offsite", "Quarterly report"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, names(list(tc.query)))
		})
	}

	t.Run("invalid date", func(t *testing.T) {
		api.expectError(api.do(http.MethodGet, "/api/tasks/user/"+owner.ID+"?date=yesterday", owner.Token, nil),
			http.StatusBadRequest)
	})

	t.Run("another user's list is forbidden", func(t *testing.T) {
		api.expectError(api.do(http.MethodGet, "/api/tasks/user/"+owner.ID, other.Token, nil),
			http.StatusForbidden)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		fresh := api.signUp("fresh@example.com")
		resp := api.do(http.MethodGet, "/api/tasks/user/"+fresh.ID, fresh.Token, nil)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, string(body))
	})
}

func TestNotificationHandler_ListAndClear(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	owner := api.signUp("owner@example.com")
	other := api.signUp("other@example.com")

	api.createTask(owner, "One", "Work", "Low", "2030-01-01")
	api.createTask(owner, "Two", "Work", "Low", "2030-01-02")

	t.Run("other user is forbidden", func(t *testing.T) {
		api.expectError(api.do(http.MethodGet, "/api/notifications/"+owner.ID, other.Token, nil),
			http.StatusForbidden)
		api.expectError(api.do(http.MethodDelete, "/api/notifications/"+owner.ID, other.Token, nil),
			http.StatusForbidden)
	})

	t.Run("invalid user id", func(t *testing.T) {
		api.expectError(api.do(http.MethodGet, "/api/notifications/bogus", owner.Token, nil),
			http.StatusBadRequest)
	})

	t.Run("list then clear", func(t *testing.T) {
		var notifications []*domain.Notification
		api.decode(api.do(http.MethodGet, "/api/notifications/"+owner.ID, owner.Token, nil),
			http.StatusOK, &notifications)
		require.Len(t, notifications, 2)
		assert.Equal(t, "New Task Added: One", notifications[0].Message)
		assert.Equal(t, "New Task Added: Two", notifications[1].Message)

		var cleared ClearNotificationsResponse
		api.decode(api.do(http.MethodDelete, "/api/notifications/"+owner.ID, owner.Token, nil),
			http.StatusOK, &cleared)
		assert.Equal(t, int64(2), cleared.Deleted)
		assert.Equal(t, "Notifications cleared", cleared.Message)

		resp := api.do(http.MethodGet, "/api/notifications/"+owner.ID, owner.Token, nil)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(body))
	})
}
