package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blog_api/internal/models"
)

var (
	// ErrDuplicateEmail is returned by Users.Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNoRowsAffected means a write matched nothing, e.g. the row vanished.
	ErrNoRowsAffected = errors.New("no rows affected")
	// ErrMissingReference means an insert pointed at a row that is gone.
	ErrMissingReference = errors.New("referenced row does not exist")
)

type Users interface {
	Create(ctx context.Context, name, email, hash string) (int, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Tokens interface {
	Create(ctx context.Context, t models.AccessToken) error
	// FindUser returns the owner of a live token, or (nil, nil).
	FindUser(ctx context.Context, id, hash string) (*models.User, error)
	DeleteByUserID(ctx context.Context, userID int) (int64, error)
}

type Posts interface {
	Create(ctx context.Context, p models.Post) (int, error)
	GetByID(ctx context.Context, id int) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByUser(ctx context.Context, userID int) ([]models.Post, error)
	Update(ctx context.Context, p models.Post) error
	Delete(ctx context.Context, id int) error
}

type Comments interface {
	Create(ctx context.Context, c models.Comment) (int, error)
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	List(ctx context.Context) ([]models.Comment, error)
	ListByUser(ctx context.Context, userID int) ([]models.Comment, error)
	ListByPost(ctx context.Context, postID int) ([]models.Comment, error)
	Update(ctx context.Context, c models.Comment) error
	Delete(ctx context.Context, id int) error
}

type ActivityRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, userID int, from, to time.Time, typ string) ([]models.ActivityEvent, error)
}

type Repository struct {
	Users    Users
	Tokens   Tokens
	Posts    Posts
	Comments Comments
	Activity ActivityRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserSQLite(db),
		Tokens:   NewTokenSQLite(db),
		Posts:    NewPostSQLite(db),
		Comments: NewCommentSQLite(db),
		Activity: NewActivitySQLite(db),
	}
}

// timestampLayout keeps a fixed width so TEXT comparison in SQLite matches
// chronological order.
const timestampLayout = "2006-01-02 15:04:05.000000"

func dbTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timestampLayout)
}

// checkAffected turns a zero-row write into ErrNoRowsAffected.
func checkAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
