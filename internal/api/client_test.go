package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeBackend serves the subset of the chat API the client uses.
// A "jwt" cookie marks an authenticated request.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	alice := User{ID: "u1", FullName: "Alice", Email: "alice@example.com"}

	mux := http.NewServeMux()
	authed := func(r *http.Request) bool {
		c, err := r.Cookie("jwt")
		return err == nil && c.Value == "token-u1"
	}
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "token-u1", Path: "/"})
		_ = json.NewEncoder(w).Encode(alice)
	})
	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"User already exists"}`)
	})
	mux.HandleFunc("GET /api/auth/check", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Unauthorized - No Token Provided"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(alice)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "", Path: "/", MaxAge: -1})
		_, _ = io.WriteString(w, `{"message":"Logged out successfully"}`)
	})
	mux.HandleFunc("GET /api/message/users", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]User{{ID: "u2", FullName: "Bob"}, {ID: "u3", FullName: "Carol"}})
	})
	mux.HandleFunc("GET /api/message/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Message{
			{ID: "m1", SenderID: "u1", ReceiverID: r.PathValue("id"), Text: "hi", CreatedAt: time.Unix(100, 0).UTC()},
		})
	})
	mux.HandleFunc("POST /api/message/send/{id}", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if _, ok := raw["image"]; !ok {
			t.Errorf("send body missing image key: %v", raw)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("send request missing X-Request-ID")
		}
		text, _ := raw["text"].(string)
		_ = json.NewEncoder(w).Encode(Message{ID: "m2", SenderID: "u1", ReceiverID: r.PathValue("id"), Text: text})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(Options{BaseURL: url, Jar: jar, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewRejectsBadScheme(t *testing.T) {
	if _, err := New(Options{BaseURL: "ftp://example.com"}); err == nil {
		t.Error("New() expected error for ftp scheme")
	}
}

func TestLoginThenCheckSession(t *testing.T) {
	srv := fakeBackend(t)
	c := testClient(t, srv.URL)
	ctx := context.Background()

	if _, err := c.CheckSession(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("CheckSession() before login error = %v, want ErrUnauthorized", err)
	}

	u, err := c.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("Login() id = %q, want u1", u.ID)
	}

	u, err = c.CheckSession(ctx)
	if err != nil {
		t.Fatalf("CheckSession() after login error = %v", err)
	}
	if u.FullName != "Alice" {
		t.Errorf("CheckSession() name = %q, want Alice", u.FullName)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := c.CheckSession(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("CheckSession() after logout error = %v, want ErrUnauthorized", err)
	}
}

func TestLoginFailureCarriesMessage(t *testing.T) {
	srv := fakeBackend(t)
	c := testClient(t, srv.URL)

	_, err := c.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "nope"})
	if err == nil {
		t.Fatal("Login() expected error")
	}
	if got := UserMessage(err, "Something went wrong"); got != "Invalid credentials" {
		t.Errorf("UserMessage() = %q, want Invalid credentials", got)
	}
}

func TestSignupFailureMessage(t *testing.T) {
	srv := fakeBackend(t)
	c := testClient(t, srv.URL)

	_, err := c.Signup(context.Background(), SignupRequest{FullName: "A", Email: "a@example.com", Password: "x"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Signup() error = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "User already exists" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestUserMessageFallback(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp: refused"), "Something went wrong"); got != "Something went wrong" {
		t.Errorf("UserMessage() = %q, want fallback", got)
	}
	if got := UserMessage(&Error{Status: 500}, "fallback"); got != "fallback" {
		t.Errorf("UserMessage() = %q, want fallback for empty message", got)
	}
}

func TestListUsersAndMessages(t *testing.T) {
	srv := fakeBackend(t)
	c := testClient(t, srv.URL)
	ctx := context.Background()
	if _, err := c.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret"}); err != nil {
		t.Fatal(err)
	}

	users, err := c.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 || users[1].FullName != "Carol" {
		t.Errorf("ListUsers() = %+v", users)
	}

	msgs, err := c.ListMessages(ctx, "u2")
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].ReceiverID != "u2" {
		t.Errorf("ListMessages() = %+v", msgs)
	}
	if !msgs[0].CreatedAt.Equal(time.Unix(100, 0)) {
		t.Errorf("CreatedAt = %v, want unix 100", msgs[0].CreatedAt)
	}
}

func TestSendMessage(t *testing.T) {
	srv := fakeBackend(t)
	c := testClient(t, srv.URL)

	m, err := c.SendMessage(context.Background(), "u2", SendRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if m.ID != "m2" || m.Text != "hello" || m.ReceiverID != "u2" {
		t.Errorf("SendMessage() = %+v", m)
	}
}

func TestListUsersUnauthorized(t *testing.T) {
	srv := fakeBackend(t)
	c := testClient(t, srv.URL)

	_, err := c.ListUsers(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ListUsers() error = %v, want ErrUnauthorized", err)
	}
}

func TestMessageInvolves(t *testing.T) {
	m := Message{SenderID: "a", ReceiverID: "b"}
	tests := []struct {
		id   string
		want bool
	}{
		{"a", true},
		{"b", true},
		{"c", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.Involves(tt.id); got != tt.want {
			t.Errorf("Involves(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestFormValidation(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"login ok", LoginRequest{Email: "a@b.co", Password: "x"}.Validate(), ""},
		{"login missing email", LoginRequest{Password: "x"}.Validate(), "email is required"},
		{"login bad email", LoginRequest{Email: "nope", Password: "x"}.Validate(), "email must be a valid email address"},
		{"signup missing name", SignupRequest{Email: "a@b.co", Password: "x"}.Validate(), "fullName is required"},
		{"signup missing password", SignupRequest{FullName: "A", Email: "a@b.co"}.Validate(), "password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantMsg == "" {
				if tt.err != nil {
					t.Errorf("Validate() error = %v, want nil", tt.err)
				}
				return
			}
			if tt.err == nil || tt.err.Error() != tt.wantMsg {
				t.Errorf("Validate() error = %v, want %q", tt.err, tt.wantMsg)
			}
		})
	}
}
