package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/auth"
	"github.com/hannakang/schedhub/internal/config"
	"github.com/hannakang/schedhub/internal/domain/user"
	"github.com/hannakang/schedhub/internal/http/handlers"
	"github.com/hannakang/schedhub/internal/repo/memory"
)

// Make sure Gin does not spam the console during the tests

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testJWTSecret  = "test-secret-key"
	testAdminToken = "letmein-admin"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		JWTSecret:           testJWTSecret,
		JWTAccessTTLMinutes: 60,
		AdminSignupToken:    testAdminToken,
	}
}

func newAuthRig() (*gin.Engine, *memory.UsersRepo, *auth.Manager) {
	users := memory.NewUsersRepo()
	jwt := auth.NewManager(testJWTSecret, time.Hour)

	h := handlers.NewAuthHandler(users, jwt, testConfig())

	r := gin.New()
	r.POST("/signup", h.SignUp)
	r.POST("/login", h.Login)

	return r, users, jwt
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp errorResponse

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not parse error body %q: %v", w.Body.String(), err)
	}

	return resp.Error.Code
}

func signupBody(username, email, password string) string {
	b, _ := json.Marshal(gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})

	return string(b)
}

func TestSignupThenLoginRoundtrip(t *testing.T) {
	r, _, jwt := newAuthRig()

	w := doJSON(r, http.MethodPost, "/signup", signupBody("alice", "alice@x.com", "password1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("signup: got status %d, body=%s", w.Code, w.Body.String())
	}

	var signupResp tokenResponse

	if err := json.Unmarshal(w.Body.Bytes(), &signupResp); err != nil {
		t.Fatalf("bad signup body: %v", err)
	}

	claims, err := jwt.Verify(signupResp.Token)

	if err != nil {
		t.Fatalf("signup token did not verify: %v", err)
	}

	if claims.Name != "alice" || claims.Role != user.RoleUser {
		t.Errorf("signup claims = (%q,%q), want (alice,USER)", claims.Name, claims.Role)
	}

	// and the same credentials log in

	w = doJSON(r, http.MethodPost, "/login", `{"email":"alice@x.com","password":"password1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login: got status %d, body=%s", w.Code, w.Body.String())
	}

	var loginResp tokenResponse

	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("bad login body: %v", err)
	}

	claims, err = jwt.Verify(loginResp.Token)

	if err != nil {
		t.Fatalf("login token did not verify: %v", err)
	}

	if claims.Name != "alice" || claims.Role != user.RoleUser {
		t.Errorf("login claims = (%q,%q), want (alice,USER)", claims.Name, claims.Role)
	}
}

func TestSignupAdminElevation(t *testing.T) {
	tests := []struct {
		name           string
		adminToken     string
		wantStatusCode int
		wantCode       string
		wantRole       string
	}{
		{
			name:           "correct_secret",
			adminToken:     testAdminToken,
			wantStatusCode: http.StatusCreated,
			wantRole:       user.RoleAdmin,
		},
		{
			name:           "wrong_secret",
			adminToken:     "nope",
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "invalid_admin_secret",
		},
		{
			name:           "missing_secret",
			adminToken:     "",
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "invalid_admin_secret",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r, users, jwt := newAuthRig()

			body, _ := json.Marshal(gin.H{
				"username":   "root",
				"email":      "root@x.com",
				"password":   "password1",
				"isAdmin":    true,
				"adminToken": tt.adminToken,
			})

			w := doJSON(r, http.MethodPost, "/signup", string(body))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" {
				if got := errCode(t, w); got != tt.wantCode {
					t.Errorf("got code %q, want %q", got, tt.wantCode)
				}

				// a rejected elevation writes nothing
				_, err := users.GetByName(context.Background(), "root")

				if err == nil {
					t.Error("rejected signup should not have persisted a user")
				}

				return
			}

			var resp tokenResponse

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad body: %v", err)
			}

			claims, err := jwt.Verify(resp.Token)

			if err != nil {
				t.Fatalf("token did not verify: %v", err)
			}

			if claims.Role != tt.wantRole {
				t.Errorf("got role %q, want %q", claims.Role, tt.wantRole)
			}
		})
	}
}

func TestSignupDuplicates(t *testing.T) {
	r, _, _ := newAuthRig()

	w := doJSON(r, http.MethodPost, "/signup", signupBody("alice", "alice@x.com", "password1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("first signup: got status %d", w.Code)
	}

	// same username, different email

	w = doJSON(r, http.MethodPost, "/signup", signupBody("alice", "other@x.com", "password1"))

	if w.Code != http.StatusConflict {
		t.Fatalf("dup username: got status %d, body=%s", w.Code, w.Body.String())
	}

	if got := errCode(t, w); got != "duplicate_username" {
		t.Errorf("got code %q, want duplicate_username", got)
	}

	// same email, different username

	w = doJSON(r, http.MethodPost, "/signup", signupBody("bob", "alice@x.com", "password1"))

	if w.Code != http.StatusConflict {
		t.Fatalf("dup email: got status %d, body=%s", w.Code, w.Body.String())
	}

	if got := errCode(t, w); got != "duplicate_email" {
		t.Errorf("got code %q, want duplicate_email", got)
	}
}

func TestSignupValidation(t *testing.T) {
	r, _, _ := newAuthRig()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing_fields", body: `{"username":"alice"}`},
		{name: "bad_email", body: signupBody("alice", "not-an-email", "password1")},
		{name: "short_password", body: signupBody("alice", "alice@x.com", "pw")},
		{name: "bad_json", body: `{"username":`},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/signup", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	r, _, _ := newAuthRig()

	w := doJSON(r, http.MethodPost, "/signup", signupBody("alice", "alice@x.com", "password1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("signup: got status %d", w.Code)
	}

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "unknown_email",
			body:     `{"email":"ghost@x.com","password":"password1"}`,
			wantCode: "unknown_email",
		},
		{
			name:     "wrong_password",
			body:     `{"email":"alice@x.com","password":"wrong-password"}`,
			wantCode: "password_mismatch",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/login", tt.body)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
			}

			if got := errCode(t, w); got != tt.wantCode {
				t.Errorf("got code %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestLoginKeepsStoredRole(t *testing.T) {
	r, _, jwt := newAuthRig()

	body, _ := json.Marshal(gin.H{
		"username":   "root",
		"email":      "root@x.com",
		"password":   "password1",
		"isAdmin":    true,
		"adminToken": testAdminToken,
	})

	if w := doJSON(r, http.MethodPost, "/signup", string(body)); w.Code != http.StatusCreated {
		t.Fatalf("signup: got status %d", w.Code)
	}

	w := doJSON(r, http.MethodPost, "/login", `{"email":"root@x.com","password":"password1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login: got status %d", w.Code)
	}

	var resp tokenResponse

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	claims, err := jwt.Verify(resp.Token)

	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}

	if claims.Role != user.RoleAdmin {
		t.Errorf("got role %q, want ADMIN", claims.Role)
	}
}
