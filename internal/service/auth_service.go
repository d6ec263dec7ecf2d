package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"blog_api/internal/models"
	"blog_api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns credentials and bearer tokens.
type AuthService struct {
	users      repository.Users
	tokens     repository.Tokens
	signingKey []byte
	activity   activityRecorder
	cost       int
	now        func() time.Time
}

func NewAuthService(users repository.Users, tokens repository.Tokens, signingKey []byte, activity activityRecorder) *AuthService {
	if activity == nil {
		activity = nopRecorder{}
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		signingKey: signingKey,
		activity:   activity,
		cost:       bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Claims defines JWT claims. ID (jti) names the server-side token row.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// Register creates the account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return models.User{}, "", err
	}
	if strings.TrimSpace(in.Password) == "" {
		return models.User{}, "", newValidationError("password", "The password field is required.")
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return models.User{}, "", err
	}
	if existing != nil {
		return models.User{}, "", emailTaken()
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return models.User{}, "", err
	}
	id, err := s.users.Create(ctx, in.Name, in.Email, hash)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, "", emailTaken()
		}
		return models.User{}, "", err
	}

	u := models.User{ID: id, Name: in.Name, Email: in.Email, PasswordHash: hash, CreatedAt: s.now().UTC()}
	token, err := s.Issue(ctx, u)
	if err != nil {
		return models.User{}, "", err
	}
	s.activity.Record(ctx, u.ID, ActivityRegister, "account created", map[string]any{"email": u.Email})
	return u, token, nil
}

func emailTaken() *ValidationError {
	return newValidationError("email", "The email has already been taken.")
}

// Verify checks credentials. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *AuthService) Verify(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		// keep the response time of the missing-user path close to a real check
		_ = verifyPassword(dummyHash(), password)
		return models.User{}, ErrInvalidCredentials
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return *u, nil
}

// Login verifies credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return models.User{}, "", err
	}
	u, err := s.Verify(ctx, in.Email, in.Password)
	if err != nil {
		return models.User{}, "", err
	}
	token, err := s.Issue(ctx, u)
	if err != nil {
		return models.User{}, "", err
	}
	s.activity.Record(ctx, u.ID, ActivityLogin, "signed in", nil)
	return u, token, nil
}

// Issue signs a new token for u and stores its digest.
func (s *AuthService) Issue(ctx context.Context, u models.User) (string, error) {
	now := s.now().UTC()
	id := uuid.NewString()
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       id,
			Subject:  strconv.Itoa(u.ID),
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: u.ID,
	})
	signed, err := tk.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	err = s.tokens.Create(ctx, models.AccessToken{
		ID:        id,
		UserID:    u.ID,
		Name:      u.Email,
		TokenHash: digest(signed),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Resolve maps a presented token to its user. Anything short of a live,
// correctly signed token yields ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, presented string) (models.User, error) {
	claims, err := s.parse(presented)
	if err != nil {
		return models.User{}, ErrUnauthenticated
	}
	u, err := s.tokens.FindUser(ctx, claims.ID, digest(presented))
	if err != nil {
		return models.User{}, err
	}
	if u == nil || u.ID != claims.UserID {
		return models.User{}, ErrUnauthenticated
	}
	return *u, nil
}

func (s *AuthService) parse(presented string) (*Claims, error) {
	if strings.TrimSpace(presented) == "" {
		return nil, ErrUnauthenticated
	}
	token, err := jwt.ParseWithClaims(presented, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Logout revokes every token the actor holds.
func (s *AuthService) Logout(ctx context.Context, actor models.User) error {
	n, err := s.RevokeAll(ctx, actor.ID)
	if err != nil {
		return err
	}
	s.activity.Record(ctx, actor.ID, ActivityLogout, "signed out", map[string]any{"revoked": n})
	return nil
}

func (s *AuthService) RevokeAll(ctx context.Context, userID int) (int64, error) {
	return s.tokens.DeleteByUserID(ctx, userID)
}

// digest is the stored form of a token.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// helper: hash password safely
func hashPassword(password string, cost int) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash is compared against when the email is unknown.
func dummyHash() string {
	dummyOnce.Do(func() {
		b := make([]byte, 32)
		_, _ = rand.Read(b)
		h, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(b)), bcrypt.DefaultCost)
		if err == nil {
			dummy = string(h)
		}
	})
	return dummy
}
