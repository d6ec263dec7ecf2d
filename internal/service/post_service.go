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

type PostService struct {
	repo      repository.Posts
	guard     guard
	sanitizer *Sanitizer
	activity  activityRecorder
	now       func() time.Time
}

func NewPostService(repo repository.Posts, engine *policy.Engine, sanitizer *Sanitizer, activity activityRecorder) *PostService {
	if activity == nil {
		activity = nopRecorder{}
	}
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &PostService{
		repo:      repo,
		guard:     guard{engine: engine, activity: activity},
		sanitizer: sanitizer,
		activity:  activity,
		now:       time.Now,
	}
}

func (s *PostService) ListAll(ctx context.Context, actor models.User) ([]models.Post, error) {
	if err := s.guard.authorize(ctx, actor, policy.ViewAny, policy.KindPost, nil); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *PostService) ListMine(ctx context.Context, actor models.User) ([]models.Post, error) {
	if err := s.guard.authorize(ctx, actor, policy.ViewAny, policy.KindPost, nil); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, actor.ID)
}

func (s *PostService) Create(ctx context.Context, actor models.User, in PostInput) (models.Post, error) {
	if err := s.guard.authorize(ctx, actor, policy.Create, policy.KindPost, nil); err != nil {
		return models.Post{}, err
	}
	in, err := s.clean(in)
	if err != nil {
		return models.Post{}, err
	}

	now := s.now().UTC()
	p := models.Post{UserID: actor.ID, Title: in.Title, Text: in.Text, CreatedAt: now, UpdatedAt: now}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return models.Post{}, err
	}
	p.ID = id
	s.activity.Record(ctx, actor.ID, ActivityPostCreate, fmt.Sprintf("created post %d", id), map[string]any{"post_id": id})
	return p, nil
}

func (s *PostService) Get(ctx context.Context, actor models.User, id int) (models.Post, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if err := s.guard.authorize(ctx, actor, policy.View, policy.KindPost, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// Update replaces title and text. Order: load, authorize, decode and
// validate, persist.
func (s *PostService) Update(ctx context.Context, actor models.User, id int, decode Decoder) (models.Post, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if err := s.guard.authorize(ctx, actor, policy.Update, policy.KindPost, p); err != nil {
		return models.Post{}, err
	}
	var in PostInput
	if err := decode(&in); err != nil {
		return models.Post{}, err
	}
	in, err = s.clean(in)
	if err != nil {
		return models.Post{}, err
	}

	p.Title, p.Text = in.Title, in.Text
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		// deleted between load and write
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	s.activity.Record(ctx, actor.ID, ActivityPostUpdate, fmt.Sprintf("updated post %d", id), map[string]any{"post_id": id})
	return p, nil
}

// Delete removes the post and, through the schema, its comments. A write
// that matches no row is reported as a storage failure.
func (s *PostService) Delete(ctx context.Context, actor models.User, id int) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.authorize(ctx, actor, policy.Delete, policy.KindPost, p); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	s.activity.Record(ctx, actor.ID, ActivityPostDelete, fmt.Sprintf("deleted post %d", id), map[string]any{"post_id": id})
	return nil
}

func (s *PostService) load(ctx context.Context, id int) (models.Post, error) {
	if id <= 0 {
		return models.Post{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if p == nil {
		return models.Post{}, ErrNotFound
	}
	return *p, nil
}

// clean trims the fields, refuses markup, then applies the field rules.
func (s *PostService) clean(in PostInput) (PostInput, error) {
	ve := &ValidationError{}
	in.Title = s.sanitizer.Field(ve, "title", in.Title)
	in.Text = s.sanitizer.Field(ve, "text", in.Text)
	if len(ve.Fields) > 0 {
		return in, ve
	}
	return in, validateInput(in)
}
