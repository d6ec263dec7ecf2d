package handlers

import (
	"context"
	"net/http"

	"blog_api/internal/models"
	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser  models.User
	registerToken string
	registerErr   error
	loginUser     models.User
	loginToken    string
	loginErr      error
	resolveUser   models.User
	resolveErr    error
	logoutErr     error

	lastRegister     service.RegisterInput
	lastLogin        service.LoginInput
	lastResolveToken string
	logoutCalls      []int
}

func (m *mockAuth) Register(_ context.Context, in service.RegisterInput) (models.User, string, error) {
	m.lastRegister = in
	return m.registerUser, m.registerToken, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, in service.LoginInput) (models.User, string, error) {
	m.lastLogin = in
	return m.loginUser, m.loginToken, m.loginErr
}

func (m *mockAuth) Resolve(_ context.Context, token string) (models.User, error) {
	m.lastResolveToken = token
	return m.resolveUser, m.resolveErr
}

func (m *mockAuth) Logout(_ context.Context, actor models.User) error {
	m.logoutCalls = append(m.logoutCalls, actor.ID)
	return m.logoutErr
}

type mockPosts struct {
	list    []models.Post
	post    models.Post
	err     error
	lastIn  service.PostInput
	lastID  int
	lastAct models.User
}

func (m *mockPosts) ListAll(_ context.Context, actor models.User) ([]models.Post, error) {
	m.lastAct = actor
	return m.list, m.err
}

func (m *mockPosts) ListMine(_ context.Context, actor models.User) ([]models.Post, error) {
	m.lastAct = actor
	return m.list, m.err
}

func (m *mockPosts) Create(_ context.Context, actor models.User, in service.PostInput) (models.Post, error) {
	m.lastAct, m.lastIn = actor, in
	return m.post, m.err
}

func (m *mockPosts) Get(_ context.Context, actor models.User, id int) (models.Post, error) {
	m.lastAct, m.lastID = actor, id
	return m.post, m.err
}

// Update fails with err before decoding, the way a missing or foreign
// post short-circuits the real service.
func (m *mockPosts) Update(_ context.Context, actor models.User, id int, decode service.Decoder) (models.Post, error) {
	m.lastAct, m.lastID = actor, id
	if m.err != nil {
		return models.Post{}, m.err
	}
	if err := decode(&m.lastIn); err != nil {
		return models.Post{}, err
	}
	return m.post, nil
}

func (m *mockPosts) Delete(_ context.Context, actor models.User, id int) error {
	m.lastAct, m.lastID = actor, id
	return m.err
}

type mockComments struct {
	list       []models.Comment
	listErr    error
	comment    models.Comment
	err        error
	lastIn     service.CommentInput
	lastUpdate service.CommentUpdateInput
	lastID     int
	lastPostID int
	listCalls  int
}

func (m *mockComments) ListAll(context.Context, models.User) ([]models.Comment, error) {
	return m.list, m.listErr
}

func (m *mockComments) ListMine(context.Context, models.User) ([]models.Comment, error) {
	return m.list, m.listErr
}

func (m *mockComments) ListForPost(_ context.Context, _ models.User, postID int) ([]models.Comment, error) {
	m.lastPostID = postID
	m.listCalls++
	return m.list, m.listErr
}

func (m *mockComments) Create(_ context.Context, _ models.User, in service.CommentInput) (models.Comment, error) {
	m.lastIn = in
	return m.comment, m.err
}

func (m *mockComments) Get(_ context.Context, _ models.User, id int) (models.Comment, error) {
	m.lastID = id
	return m.comment, m.err
}

func (m *mockComments) Update(_ context.Context, _ models.User, id int, decode service.Decoder) (models.Comment, error) {
	m.lastID = id
	if m.err != nil {
		return models.Comment{}, m.err
	}
	if err := decode(&m.lastUpdate); err != nil {
		return models.Comment{}, err
	}
	return m.comment, nil
}

func (m *mockComments) Delete(_ context.Context, _ models.User, id int) error {
	m.lastID = id
	return m.err
}

type mockActivity struct {
	resp       []models.ActivityEvent
	err        error
	lastFilter service.ActivityFilter
	lastActor  models.User
}

func (m *mockActivity) List(_ context.Context, actor models.User, f service.ActivityFilter) ([]models.ActivityEvent, error) {
	m.lastActor = actor
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

var testActor = models.User{ID: 7, Name: "Alice", Email: "alice@example.com"}

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts...)
	return h.InitRoutes()
}

// signedIn returns a service whose auth accepts any token as testActor.
func signedIn(s *service.Service) *service.Service {
	if s.Authorization == nil {
		s.Authorization = &mockAuth{resolveUser: testActor}
	}
	return s
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
