package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog_api/internal/models"
	"blog_api/internal/repository"
)

// memStore is an in-memory stand-in for the SQLite repositories.
type memStore struct {
	mu       sync.Mutex
	users    map[int]models.User
	tokens   map[string]models.AccessToken
	posts    map[int]models.Post
	comments map[int]models.Comment
	nextID   int

	failWith error // returned by every call when set
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int]models.User{},
		tokens:   map[string]models.AccessToken{},
		posts:    map[int]models.Post{},
		comments: map[int]models.Comment{},
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, name, email, hash string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	for _, u := range m.users {
		if u.Email == email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	id := m.id()
	m.users[id] = models.User{ID: id, Name: name, Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	return id, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

type memTokens struct{ *memStore }

func (m memTokens) Create(_ context.Context, t models.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.tokens[t.ID] = t
	return nil
}

func (m memTokens) FindUser(_ context.Context, id, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	t, ok := m.tokens[id]
	if !ok || t.TokenHash != hash {
		return nil, nil
	}
	u, ok := m.users[t.UserID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m memTokens) DeleteByUserID(_ context.Context, userID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	var n int64
	for id, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

type memPosts struct{ *memStore }

func (m memPosts) Create(_ context.Context, p models.Post) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	p.ID = m.id()
	m.posts[p.ID] = p
	return p.ID, nil
}

func (m memPosts) GetByID(_ context.Context, id int) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if p, ok := m.posts[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m memPosts) List(context.Context) ([]models.Post, error) {
	return m.filter(func(models.Post) bool { return true }), nil
}

func (m memPosts) ListByUser(_ context.Context, userID int) ([]models.Post, error) {
	return m.filter(func(p models.Post) bool { return p.UserID == userID }), nil
}

func (m memPosts) filter(keep func(models.Post) bool) []models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Post{}
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memPosts) Update(_ context.Context, p models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; !ok {
		return repository.ErrNoRowsAffected
	}
	m.posts[p.ID] = p
	return nil
}

func (m memPosts) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repository.ErrNoRowsAffected
	}
	delete(m.posts, id)
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

type memComments struct{ *memStore }

func (m memComments) Create(_ context.Context, c models.Comment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	c.ID = m.id()
	m.comments[c.ID] = c
	return c.ID, nil
}

func (m memComments) GetByID(_ context.Context, id int) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.comments[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m memComments) List(context.Context) ([]models.Comment, error) {
	return m.filter(func(models.Comment) bool { return true }), nil
}

func (m memComments) ListByUser(_ context.Context, userID int) ([]models.Comment, error) {
	return m.filter(func(c models.Comment) bool { return c.UserID == userID }), nil
}

func (m memComments) ListByPost(_ context.Context, postID int) ([]models.Comment, error) {
	return m.filter(func(c models.Comment) bool { return c.PostID == postID }), nil
}

func (m memComments) filter(keep func(models.Comment) bool) []models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memComments) Update(_ context.Context, c models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[c.ID]; !ok {
		return repository.ErrNoRowsAffected
	}
	m.comments[c.ID] = c
	return nil
}

func (m memComments) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.comments[id]; !ok {
		return repository.ErrNoRowsAffected
	}
	delete(m.comments, id)
	return nil
}

// recorder captures activity entries.
type recorder struct {
	mu      sync.Mutex
	entries []recorded
}

type recorded struct {
	userID int
	typ    string
	meta   any
}

func (r *recorder) Record(_ context.Context, userID int, typ, _ string, meta any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recorded{userID: userID, typ: typ, meta: meta})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.typ)
	}
	return out
}

func (r *recorder) count(typ string) int {
	n := 0
	for _, t := range r.types() {
		if t == typ {
			n++
		}
	}
	return n
}
