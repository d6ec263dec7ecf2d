package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog_api/internal/models"
	"blog_api/internal/policy"
	"blog_api/internal/repository"
)

type CommentService struct {
	repo      repository.Comments
	posts     repository.Posts
	guard     guard
	sanitizer *Sanitizer
	activity  activityRecorder
	now       func() time.Time
}

func NewCommentService(repo repository.Comments, posts repository.Posts, engine *policy.Engine, sanitizer *Sanitizer, activity activityRecorder) *CommentService {
	if activity == nil {
		activity = nopRecorder{}
	}
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &CommentService{
		repo:      repo,
		posts:     posts,
		guard:     guard{engine: engine, activity: activity},
		sanitizer: sanitizer,
		activity:  activity,
		now:       time.Now,
	}
}

func (s *CommentService) ListAll(ctx context.Context, actor models.User) ([]models.Comment, error) {
	if err := s.guard.authorize(ctx, actor, policy.ViewAny, policy.KindComment, nil); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *CommentService) ListMine(ctx context.Context, actor models.User) ([]models.Comment, error) {
	if err := s.guard.authorize(ctx, actor, policy.ViewAny, policy.KindComment, nil); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, actor.ID)
}

// ListForPost returns the comments of one post, ErrNotFound if the post is gone.
func (s *CommentService) ListForPost(ctx context.Context, actor models.User, postID int) ([]models.Comment, error) {
	if err := s.guard.authorize(ctx, actor, policy.ViewAny, policy.KindComment, nil); err != nil {
		return nil, err
	}
	if postID <= 0 {
		return nil, ErrNotFound
	}
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return s.repo.ListByPost(ctx, postID)
}

func (s *CommentService) Create(ctx context.Context, actor models.User, in CommentInput) (models.Comment, error) {
	if err := s.guard.authorize(ctx, actor, policy.Create, policy.KindComment, nil); err != nil {
		return models.Comment{}, err
	}
	ve := &ValidationError{}
	in.Text = s.sanitizer.Field(ve, "text", in.Text)
	if len(ve.Fields) > 0 {
		return models.Comment{}, ve
	}
	if err := validateInput(in); err != nil {
		return models.Comment{}, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return models.Comment{}, err
	}

	now := s.now().UTC()
	c := models.Comment{
		UserID:    actor.ID,
		PostID:    in.PostID,
		CommentID: in.CommentID,
		Text:      in.Text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		// the post or parent was deleted after checkReferences
		if errors.Is(err, repository.ErrMissingReference) {
			if rerr := s.checkReferences(ctx, in); rerr != nil {
				return models.Comment{}, rerr
			}
			return models.Comment{}, newValidationError("post_id", "The selected post id is invalid.")
		}
		return models.Comment{}, err
	}
	c.ID = id
	s.activity.Record(ctx, actor.ID, ActivityCommentCreate, fmt.Sprintf("commented on post %d", c.PostID),
		map[string]any{"comment_id": id, "post_id": c.PostID})
	return c, nil
}

// checkReferences verifies the post exists and that a parent comment, when
// given, exists on that same post.
func (s *CommentService) checkReferences(ctx context.Context, in CommentInput) error {
	p, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if p == nil {
		return newValidationError("post_id", "The selected post id is invalid.")
	}
	if in.CommentID == nil {
		return nil
	}
	parent, err := s.repo.GetByID(ctx, *in.CommentID)
	if err != nil {
		return err
	}
	if parent == nil || parent.PostID != in.PostID {
		return newValidationError("comment_id", "The selected comment id is invalid.")
	}
	return nil
}

func (s *CommentService) Get(ctx context.Context, actor models.User, id int) (models.Comment, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.guard.authorize(ctx, actor, policy.View, policy.KindComment, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// Update changes the text only; post and parent are fixed at creation.
func (s *CommentService) Update(ctx context.Context, actor models.User, id int, decode Decoder) (models.Comment, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.guard.authorize(ctx, actor, policy.Update, policy.KindComment, c); err != nil {
		return models.Comment{}, err
	}
	var in CommentUpdateInput
	if err := decode(&in); err != nil {
		return models.Comment{}, err
	}
	ve := &ValidationError{}
	in.Text = s.sanitizer.Field(ve, "text", in.Text)
	if len(ve.Fields) > 0 {
		return models.Comment{}, ve
	}
	if err := validateInput(in); err != nil {
		return models.Comment{}, err
	}

	c.Text = in.Text
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, err
	}
	s.activity.Record(ctx, actor.ID, ActivityCommentUpdate, fmt.Sprintf("updated comment %d", id), map[string]any{"comment_id": id})
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, actor models.User, id int) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.authorize(ctx, actor, policy.Delete, policy.KindComment, c); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	s.activity.Record(ctx, actor.ID, ActivityCommentDelete, fmt.Sprintf("deleted comment %d", id), map[string]any{"comment_id": id})
	return nil
}

func (s *CommentService) load(ctx context.Context, id int) (models.Comment, error) {
	if id <= 0 {
		return models.Comment{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if c == nil {
		return models.Comment{}, ErrNotFound
	}
	return *c, nil
}
