package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog_api/internal/models"
)

type PostSQLite struct {
	db *sql.DB
}

func NewPostSQLite(db *sql.DB) *PostSQLite {
	return &PostSQLite{db: db}
}

var _ Posts = (*PostSQLite)(nil)

const (
	postColumns = `id, user_id, title, text, created_at, updated_at`

	insertPostSQL        = `INSERT INTO posts (user_id, title, text, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	selectPostByIDSQL    = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	selectPostsSQL       = `SELECT ` + postColumns + ` FROM posts ORDER BY id ASC`
	selectPostsByUserSQL = `SELECT ` + postColumns + ` FROM posts WHERE user_id = ? ORDER BY id ASC`
	updatePostSQL        = `UPDATE posts SET title = ?, text = ?, updated_at = ? WHERE id = ?`
	deletePostSQL        = `DELETE FROM posts WHERE id = ?`
)

// Create inserts a post and returns its ID. CreatedAt/UpdatedAt must be set by the caller.
func (r *PostSQLite) Create(ctx context.Context, p models.Post) (int, error) {
	res, err := r.db.ExecContext(ctx, insertPostSQL, p.UserID, p.Title, p.Text, dbTime(p.CreatedAt), dbTime(p.UpdatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert post for user %d: %w", p.UserID, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for post: %w", err)
	}
	return int(lastID), nil
}

// GetByID returns (nil, nil) if the post does not exist.
func (r *PostSQLite) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var p models.Post
	err := r.db.QueryRowContext(ctx, selectPostByIDSQL, id).
		Scan(&p.ID, &p.UserID, &p.Title, &p.Text, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post %d: %w", id, err)
	}
	normalizePost(&p)
	return &p, nil
}

func (r *PostSQLite) List(ctx context.Context) ([]models.Post, error) {
	return r.query(ctx, selectPostsSQL)
}

func (r *PostSQLite) ListByUser(ctx context.Context, userID int) ([]models.Post, error) {
	return r.query(ctx, selectPostsByUserSQL, userID)
}

// Update rewrites title and text. Ownership columns are never touched.
func (r *PostSQLite) Update(ctx context.Context, p models.Post) error {
	res, err := r.db.ExecContext(ctx, updatePostSQL, p.Title, p.Text, dbTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update post %d: %w", p.ID, err)
	}
	return checkAffected(res, fmt.Sprintf("update post %d", p.ID))
}

// Delete removes the post; its comments go with it via ON DELETE CASCADE.
func (r *PostSQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deletePostSQL, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return checkAffected(res, fmt.Sprintf("delete post %d", id))
}

func (r *PostSQLite) query(ctx context.Context, q string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Post, 0, 16)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Text, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		normalizePost(&p)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

func normalizePost(p *models.Post) {
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
}
