package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticketdesk/internal/navigation"
	"ticketdesk/internal/notify"
)

func TestSignupRegistersAndRedirects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.auth.Signup(ctx, SignupInput{Name: " Ana ", Email: " Ana@X.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.User.Email != "ana@x.com" || res.User.Name != "Ana" {
		t.Fatalf("user = %+v", res.User)
	}
	if res.Redirect.Page != navigation.PageLogin || res.Redirect.Delay != 800 {
		t.Fatalf("redirect = %+v", res.Redirect)
	}

	users, err := h.store.LoadUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Password != "secret1" {
		t.Fatalf("users = %+v", users)
	}
	if got := h.notes.last(); got.message != "Signup successful — please login" || got.kind != notify.KindSuccess {
		t.Fatalf("notification = %+v", got)
	}

	h.clock.Advance(799 * time.Millisecond)
	if h.nav.Current() == navigation.PageLogin {
		t.Fatal("redirect applied early")
	}
	h.clock.Advance(time.Millisecond)
	waitFor(t, func() bool { return h.nav.Current() == navigation.PageLogin })
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.auth.Signup(ctx, SignupInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}
	_, err := h.auth.Signup(ctx, SignupInput{Name: "Other", Email: "ANA@x.com", Password: "another1"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}

	users, _ := h.store.LoadUsers(ctx)
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	if got := h.notes.last(); got.message != "Email already registered. Please log in." || got.kind != notify.KindError {
		t.Fatalf("notification = %+v", got)
	}
}

func TestSignupValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Signup(context.Background(), SignupInput{Name: "  ", Email: "not-an-email", Password: "12345"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	want := map[string]string{
		"name":     "Name is required",
		"email":    "Please enter a valid email",
		"password": "Password must be at least 6 characters",
	}
	for field, msg := range want {
		if got, ok := verr.Message(field); !ok || got != msg {
			t.Errorf("%s = %q, want %q", field, got, msg)
		}
	}
	if got := h.notes.last(); got.message != "Name is required" {
		t.Fatalf("notification = %+v", got)
	}

	users, _ := h.store.LoadUsers(context.Background())
	if len(users) != 0 {
		t.Fatalf("users = %d, want 0", len(users))
	}
}

func TestSignupPasswordIsTrimmedBeforeLengthCheck(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Signup(context.Background(), SignupInput{Name: "Ana", Email: "ana@x.com", Password: "  abc   "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, ok := verr.Message("password"); !ok {
		t.Fatal("short trimmed password accepted")
	}
}

func TestLoginIssuesSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.signupAndLogin(t)
	if res.Session.Email != "ana@x.com" || res.Session.Token == "" {
		t.Fatalf("session = %+v", res.Session)
	}
	if res.Redirect.Page != navigation.PageDashboard || res.Redirect.Delay != 600 {
		t.Fatalf("redirect = %+v", res.Redirect)
	}

	stored, err := h.store.LoadSession(ctx)
	if err != nil || stored == nil || *stored != res.Session {
		t.Fatalf("stored session = %+v, %v", stored, err)
	}
	if got := h.notes.last(); got.message != "Login successful" {
		t.Fatalf("notification = %+v", got)
	}

	session, err := h.auth.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if session != res.Session {
		t.Fatalf("authenticated session = %+v", session)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.auth.Signup(ctx, SignupInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	for _, in := range []LoginInput{
		{Email: "ana@x.com", Password: "wrong00"},
		{Email: "bob@x.com", Password: "secret1"},
	} {
		if _, err := h.auth.Login(ctx, in); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%+v) err = %v", in, err)
		}
		if got := h.notes.last(); got.message != "Invalid email or password" || got.kind != notify.KindError {
			t.Fatalf("notification = %+v", got)
		}
	}

	if session, _ := h.store.LoadSession(ctx); session != nil {
		t.Fatalf("session = %+v, want none", session)
	}
}

func TestLoginRequiresFields(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Login(context.Background(), LoginInput{Email: " ", Password: ""})
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 2 {
		t.Fatalf("err = %v", err)
	}
	if got := h.notes.last(); got.message != "Email is required" {
		t.Fatalf("notification = %+v", got)
	}
}

func TestLogoutDeclinedKeepsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res := h.signupAndLogin(t)
	before := h.notes.count()

	h.answer.Store(false)
	ok, err := h.auth.Logout(ctx)
	if err != nil || ok {
		t.Fatalf("Logout = %v, %v", ok, err)
	}
	if h.prompts.Load() != 1 {
		t.Fatalf("prompts = %d, want 1", h.prompts.Load())
	}

	stored, _ := h.store.LoadSession(ctx)
	if stored == nil || *stored != res.Session {
		t.Fatalf("session = %+v", stored)
	}
	if h.notes.count() != before {
		t.Fatal("declined logout notified")
	}
}

func TestLogoutConfirmedClearsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res := h.signupAndLogin(t)

	h.answer.Store(true)
	ok, err := h.auth.Logout(ctx)
	if err != nil || !ok {
		t.Fatalf("Logout = %v, %v", ok, err)
	}

	if stored, _ := h.store.LoadSession(ctx); stored != nil {
		t.Fatalf("session = %+v, want none", stored)
	}
	if got := h.notes.last(); got.message != "Logged out — redirecting" || got.kind != notify.KindInfo {
		t.Fatalf("notification = %+v", got)
	}
	if _, err := h.auth.Authenticate(ctx, res.AccessToken); !errors.Is(err, ErrNoSession) {
		t.Fatalf("stale token err = %v", err)
	}

	h.clock.Advance(600 * time.Millisecond)
	waitFor(t, func() bool { return h.nav.Current() == navigation.PageLogin })
}

func TestAuthenticateRejectsReplacedSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.signupAndLogin(t)
	if _, err := h.auth.Login(ctx, LoginInput{Email: "ana@x.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.auth.Authenticate(ctx, first.AccessToken); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}
