package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"blog_api/internal/logger"
	"blog_api/internal/models"
	"blog_api/internal/repository"
)

// Activity event types.
const (
	ActivityRegister      = "REGISTER"
	ActivityLogin         = "LOGIN"
	ActivityLogout        = "LOGOUT"
	ActivityPostCreate    = "POST_CREATE"
	ActivityPostUpdate    = "POST_UPDATE"
	ActivityPostDelete    = "POST_DELETE"
	ActivityCommentCreate = "COMMENT_CREATE"
	ActivityCommentUpdate = "COMMENT_UPDATE"
	ActivityCommentDelete = "COMMENT_DELETE"
	ActivityAccessDenied  = "ACCESS_DENIED"
)

// activityRecorder is what the other services need from ActivityService.
type activityRecorder interface {
	Record(ctx context.Context, userID int, typ, description string, meta any)
}

type ActivityService struct {
	repo repository.ActivityRepo
	log  *logger.Logger
}

func NewActivityService(repo repository.ActivityRepo, log *logger.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

// ErrInvalidTimeRange is returned when From is after To.
var ErrInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f ActivityFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}
	return from, to, normalizeEventType(f.Type), nil
}

// Record appends an event for userID. Failures are logged and swallowed:
// the audit trail must never fail the request that produced it.
func (s *ActivityService) Record(ctx context.Context, userID int, typ, description string, meta any) {
	err := s.repo.Append(ctx, models.ActivityEvent{
		UserID:      userID,
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
	if err != nil && s.log != nil {
		s.log.Warnw("activity_append_failed", "err", err, "user_id", userID, "type", typ)
	}
}

// List returns the actor's own events; nobody can read another user's trail.
func (s *ActivityService) List(ctx context.Context, actor models.User, f ActivityFilter) ([]models.ActivityEvent, error) {
	if actor.ID <= 0 {
		return nil, ErrUnauthenticated
	}
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, actor.ID, from, to, typ)
}
