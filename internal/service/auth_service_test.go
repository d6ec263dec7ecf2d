package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"blog_api/internal/models"
	"blog_api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var testKey = []byte("test-signing-key")

func newTestAuth(t *testing.T) (*AuthService, *memStore, *recorder) {
	t.Helper()
	store := newMemStore()
	rec := &recorder{}
	svc := NewAuthService(memUsers{store}, memTokens{store}, testKey, rec)
	svc.cost = bcrypt.MinCost
	return svc, store, rec
}

func register(t *testing.T, svc *AuthService, email string) (models.User, string) {
	t.Helper()
	u, tok, err := svc.Register(context.Background(), RegisterInput{Name: "Alice", Email: email, Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", email, err)
	}
	return u, tok
}

// --- Register tests ---

func TestAuthService_Register_SuccessHashesPasswordAndIssuesToken(t *testing.T) {
	svc, store, rec := newTestAuth(t)

	u, tok, err := svc.Register(context.Background(), RegisterInput{Name: " Alice ", Email: "alice@example.com", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.ID <= 0 || u.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if tok == "" {
		t.Fatalf("expected non-empty token")
	}

	stored := store.users[u.ID]
	if stored.PasswordHash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(stored.PasswordHash, "s3cr3t"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}
	if len(store.tokens) != 1 {
		t.Fatalf("expected 1 token row, got %d", len(store.tokens))
	}
	for _, row := range store.tokens {
		if row.TokenHash == tok {
			t.Errorf("plaintext token must not be stored")
		}
		if row.TokenHash != digest(tok) {
			t.Errorf("stored digest mismatch")
		}
		if row.Name != "alice@example.com" {
			t.Errorf("expected token name to be the email, got %q", row.Name)
		}
	}

	got, err := svc.Resolve(context.Background(), tok)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user %d, got %d", u.ID, got.ID)
	}
	if rec.count(ActivityRegister) != 1 {
		t.Fatalf("expected one REGISTER entry, got %v", rec.types())
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	register(t, svc, "dup@example.com")

	_, tok, err := svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "dup@example.com", Password: "pw"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if got := ve.Fields["email"]; len(got) != 1 || got[0] != "The email has already been taken." {
		t.Fatalf("unexpected email errors: %v", got)
	}
	if tok != "" {
		t.Fatalf("no token may be returned on failure")
	}
	if len(store.tokens) != 1 {
		t.Fatalf("expected only the first registration's token, got %d", len(store.tokens))
	}
}

func TestAuthService_Register_PasswordByteLimit(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"72 ascii bytes", strings.Repeat("a", 72), true},
		{"73 ascii bytes", strings.Repeat("a", 73), false},
		// 40 runes, 80 bytes
		{"multibyte over limit", strings.Repeat("é", 40), false},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newTestAuth(t)
			email := fmt.Sprintf("user%d@example.com", i)
			_, tok, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: email, Password: tc.password})
			if tc.ok {
				if err != nil || tok == "" {
					t.Fatalf("expected success, got err=%v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			want := "The password field must not be greater than 72 bytes."
			if got := ve.Fields["password"]; len(got) != 1 || got[0] != want {
				t.Fatalf("unexpected password errors: %v", got)
			}
			if len(store.users) != 0 {
				t.Fatalf("no user may be stored on failure")
			}
		})
	}
}

// usersRacing reports the email as free but fails the insert on the unique index.
type usersRacing struct{ memUsers }

func (usersRacing) GetByEmail(context.Context, string) (*models.User, error) { return nil, nil }
func (usersRacing) Create(context.Context, string, string, string) (int, error) {
	return 0, repository.ErrDuplicateEmail
}

func TestAuthService_Register_UniqueViolationBecomesValidationError(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(usersRacing{memUsers{store}}, memTokens{store}, testKey, nil)
	svc.cost = bcrypt.MinCost

	_, _, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "pw"})
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Fields["email"]) == 0 {
		t.Fatalf("expected email validation error, got %v", err)
	}
	if len(store.tokens) != 0 {
		t.Fatalf("expected no tokens, got %d", len(store.tokens))
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "pw"}, "name"},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "pw"}, "email"},
		{"empty password", RegisterInput{Name: "A", Email: "a@example.com"}, "password"},
		{"blank password", RegisterInput{Name: "A", Email: "a@example.com", Password: "   "}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestAuth(t)
			_, _, err := svc.Register(context.Background(), tt.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(ve.Fields[tt.field]) == 0 {
				t.Fatalf("expected error on %q, got %v", tt.field, ve.Fields)
			}
			if len(store.users) != 0 {
				t.Fatalf("no user may be created")
			}
		})
	}
}

func TestAuthService_Register_RepoError(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	store.failWith = errors.New("db down")

	_, _, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "pw"})
	if err == nil {
		t.Fatalf("expected repo error, got nil")
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Fatalf("storage failure must not look like a validation error")
	}
}

// --- Login tests ---

func TestAuthService_Login_SuccessIssuesNewToken(t *testing.T) {
	svc, store, rec := newTestAuth(t)
	u, first := register(t, svc, "bob@example.com")

	got, second, err := svc.Login(context.Background(), LoginInput{Email: "bob@example.com", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user %d, got %d", u.ID, got.ID)
	}
	if second == first {
		t.Fatalf("expected a distinct token per login")
	}
	if len(store.tokens) != 2 {
		t.Fatalf("expected 2 live tokens, got %d", len(store.tokens))
	}
	if rec.count(ActivityLogin) != 1 {
		t.Fatalf("expected one LOGIN entry, got %v", rec.types())
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	register(t, svc, "carol@example.com")

	_, _, errWrong := svc.Login(context.Background(), LoginInput{Email: "carol@example.com", Password: "nope"})
	_, _, errMissing := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "nope"})

	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if !errors.Is(errMissing, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errMissing)
	}
	if errWrong.Error() != errMissing.Error() {
		t.Fatalf("messages differ: %q vs %q", errWrong, errMissing)
	}
	if len(store.tokens) != 1 {
		t.Fatalf("failed logins must not issue tokens, got %d", len(store.tokens))
	}
}

func TestAuthService_Login_RepoError(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	store.failWith = errors.New("query failed")

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "x@example.com", Password: "pw"})
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

// --- Resolve tests ---

func TestAuthService_Resolve_Rejects(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	u, _ := register(t, svc, "dan@example.com")

	now := time.Now()
	claims := func(id string) *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: id, Subject: strconv.Itoa(u.ID), IssuedAt: jwt.NewNumericDate(now)},
			UserID:           u.ID,
		}
	}

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims("x")).SignedString([]byte("different-key"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	// correctly signed but never stored
	unknown, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims("unknown")).SignedString(testKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}
	rs256, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims("y")).SignedString(privateKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	for name, tok := range map[string]string{
		"empty":          "",
		"malformed":      "not-a-jwt",
		"wrong key":      wrongKey,
		"not stored":     unknown,
		"unexpected alg": rs256,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Resolve(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestAuthService_Resolve_UserGone(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	u, tok := register(t, svc, "erin@example.com")
	delete(store.users, u.ID)

	if _, err := svc.Resolve(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Resolve_RepoErrorIsNotUnauthenticated(t *testing.T) {
	svc, store, _ := newTestAuth(t)
	_, tok := register(t, svc, "fay@example.com")
	store.failWith = errors.New("db down")

	_, err := svc.Resolve(context.Background(), tok)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

// --- Logout / revoke tests ---

func TestAuthService_Logout_RevokesEveryToken(t *testing.T) {
	svc, _, rec := newTestAuth(t)
	u, first := register(t, svc, "gus@example.com")
	_, second, err := svc.Login(context.Background(), LoginInput{Email: "gus@example.com", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	other, otherTok := register(t, svc, "hal@example.com")

	if err := svc.Logout(context.Background(), u); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	for _, tok := range []string{first, second} {
		if _, err := svc.Resolve(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected revoked token to fail, got %v", err)
		}
	}
	got, err := svc.Resolve(context.Background(), otherTok)
	if err != nil || got.ID != other.ID {
		t.Fatalf("other user's token must survive, got %v %v", got, err)
	}
	if rec.count(ActivityLogout) != 1 {
		t.Fatalf("expected one LOGOUT entry, got %v", rec.types())
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	if _, err := hashPassword("   ", bcrypt.MinCost); err == nil {
		t.Fatalf("expected error for empty password, got nil")
	}
}

func TestDummyHash_IsValidBcrypt(t *testing.T) {
	h := dummyHash()
	if h == "" {
		t.Fatalf("expected dummy hash")
	}
	if _, err := bcrypt.Cost([]byte(h)); err != nil {
		t.Fatalf("dummy hash is not bcrypt: %v", err)
	}
}
