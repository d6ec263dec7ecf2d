package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blog_api/internal/models"
)

type CommentSQLite struct {
	db *sql.DB
}

func NewCommentSQLite(db *sql.DB) *CommentSQLite {
	return &CommentSQLite{db: db}
}

var _ Comments = (*CommentSQLite)(nil)

const (
	commentColumns = `id, user_id, post_id, comment_id, text, created_at, updated_at`

	insertCommentSQL        = `INSERT INTO comments (user_id, post_id, comment_id, text, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	selectCommentByIDSQL    = `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`
	selectCommentsSQL       = `SELECT ` + commentColumns + ` FROM comments ORDER BY id ASC`
	selectCommentsByUserSQL = `SELECT ` + commentColumns + ` FROM comments WHERE user_id = ? ORDER BY id ASC`
	selectCommentsByPostSQL = `SELECT ` + commentColumns + ` FROM comments WHERE post_id = ? ORDER BY id ASC`
	updateCommentSQL        = `UPDATE comments SET text = ?, updated_at = ? WHERE id = ?`
	deleteCommentSQL        = `DELETE FROM comments WHERE id = ?`
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(s rowScanner) (models.Comment, error) {
	var (
		c      models.Comment
		parent sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.UserID, &c.PostID, &parent, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return models.Comment{}, err
	}
	if parent.Valid {
		id := int(parent.Int64)
		c.CommentID = &id
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// Create inserts a comment and returns its ID.
func (r *CommentSQLite) Create(ctx context.Context, c models.Comment) (int, error) {
	var parent any
	if c.CommentID != nil {
		parent = *c.CommentID
	}
	res, err := r.db.ExecContext(ctx, insertCommentSQL,
		c.UserID, c.PostID, parent, c.Text, dbTime(c.CreatedAt), dbTime(c.UpdatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert comment on post %d: %w", c.PostID, ErrMissingReference)
		}
		return 0, fmt.Errorf("insert comment on post %d: %w", c.PostID, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for comment: %w", err)
	}
	return int(lastID), nil
}

// GetByID returns (nil, nil) if the comment does not exist.
func (r *CommentSQLite) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, selectCommentByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select comment %d: %w", id, err)
	}
	return &c, nil
}

func (r *CommentSQLite) List(ctx context.Context) ([]models.Comment, error) {
	return r.query(ctx, selectCommentsSQL)
}

func (r *CommentSQLite) ListByUser(ctx context.Context, userID int) ([]models.Comment, error) {
	return r.query(ctx, selectCommentsByUserSQL, userID)
}

func (r *CommentSQLite) ListByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	return r.query(ctx, selectCommentsByPostSQL, postID)
}

// Update rewrites the text only; post, parent and author are fixed at creation.
func (r *CommentSQLite) Update(ctx context.Context, c models.Comment) error {
	res, err := r.db.ExecContext(ctx, updateCommentSQL, c.Text, dbTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update comment %d: %w", c.ID, err)
	}
	return checkAffected(res, fmt.Sprintf("update comment %d", c.ID))
}

func (r *CommentSQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteCommentSQL, id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return checkAffected(res, fmt.Sprintf("delete comment %d", id))
}

func (r *CommentSQLite) query(ctx context.Context, q string, args ...any) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0, 16)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
