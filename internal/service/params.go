package service

import (
	"fmt"
	"time"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,bytemax=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PostInput is the payload for creating and replacing a post.
type PostInput struct {
	Title string `json:"title" validate:"required,max=255"`
	Text  string `json:"text" validate:"required"`
}

type CommentInput struct {
	Text      string `json:"text" validate:"required"`
	PostID    int    `json:"post_id" validate:"required"`
	CommentID *int   `json:"comment_id" validate:"omitempty,gt=0"` // optional parent
}

// CommentUpdateInput only allows the text to change.
type CommentUpdateInput struct {
	Text string `json:"text" validate:"required"`
}

// ActivityFilter supports history filtering by time range and type.
type ActivityFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "" or one of the Activity* constants
}

// Decoder fills dst from a request payload. Update calls it only once the
// target is loaded and the actor may change it, so a bad payload never
// masks a missing row or a refusal.
type Decoder func(dst any) error

// Payload is a Decoder over an already decoded value.
func Payload[T any](in T) Decoder {
	return func(dst any) error {
		p, ok := dst.(*T)
		if !ok {
			return fmt.Errorf("payload %T cannot fill %T", in, dst)
		}
		*p = in
		return nil
	}
}
