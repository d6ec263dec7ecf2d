package service

import (
	"context"

	"blog_api/internal/logger"
	"blog_api/internal/models"
	"blog_api/internal/policy"
	"blog_api/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (models.User, string, error)
	Login(ctx context.Context, in LoginInput) (models.User, string, error)
	Resolve(ctx context.Context, token string) (models.User, error)
	Logout(ctx context.Context, actor models.User) error
}

// Posts is the resource access layer for posts. actor is always the
// authenticated caller.
type Posts interface {
	ListAll(ctx context.Context, actor models.User) ([]models.Post, error)
	ListMine(ctx context.Context, actor models.User) ([]models.Post, error)
	Create(ctx context.Context, actor models.User, in PostInput) (models.Post, error)
	Get(ctx context.Context, actor models.User, id int) (models.Post, error)
	Update(ctx context.Context, actor models.User, id int, decode Decoder) (models.Post, error)
	Delete(ctx context.Context, actor models.User, id int) error
}

type Comments interface {
	ListAll(ctx context.Context, actor models.User) ([]models.Comment, error)
	ListMine(ctx context.Context, actor models.User) ([]models.Comment, error)
	ListForPost(ctx context.Context, actor models.User, postID int) ([]models.Comment, error)
	Create(ctx context.Context, actor models.User, in CommentInput) (models.Comment, error)
	Get(ctx context.Context, actor models.User, id int) (models.Comment, error)
	Update(ctx context.Context, actor models.User, id int, decode Decoder) (models.Comment, error)
	Delete(ctx context.Context, actor models.User, id int) error
}

// Activity exposes the caller's own audit trail.
type Activity interface {
	List(ctx context.Context, actor models.User, f ActivityFilter) ([]models.ActivityEvent, error)
}

type Service struct {
	Authorization
	Posts
	Comments
	Activity
}

func NewService(repos *repository.Repository, signingKey []byte, log *logger.Logger) *Service {
	activity := NewActivityService(repos.Activity, log)
	engine := policy.NewEngine()
	sanitizer := NewSanitizer()
	return &Service{
		Authorization: NewAuthService(repos.Users, repos.Tokens, signingKey, activity),
		Posts:         NewPostService(repos.Posts, engine, sanitizer, activity),
		Comments:      NewCommentService(repos.Comments, repos.Posts, engine, sanitizer, activity),
		Activity:      activity,
	}
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, int, string, string, any) {}

// guard runs a policy check and leaves an ACCESS_DENIED entry on refusal.
type guard struct {
	engine   *policy.Engine
	activity activityRecorder
}

func (g guard) authorize(ctx context.Context, actor models.User, action policy.Action, kind policy.Kind, target policy.Owned) error {
	if actor.ID <= 0 {
		return ErrUnauthenticated
	}
	err := g.engine.Authorize(actor, action, kind, target)
	if err == nil {
		return nil
	}
	meta := map[string]any{"kind": string(kind), "action": string(action)}
	if target != nil {
		meta["author_id"] = target.AuthorID()
	}
	g.activity.Record(ctx, actor.ID, ActivityAccessDenied, err.Error(), meta)
	return err
}
