package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"blog_api/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestActivityAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewActivitySQLite(db)

	// generated id and timestamp are unknown; type must be normalized
	mock.ExpectExec(regexp.QuoteMeta(insertActivitySQL)).
		WithArgs(sqlmock.AnyArg(), 3, sqlmock.AnyArg(), "LOGIN", "signed in", `{"a":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(ctx(t), models.ActivityEvent{
		UserID:      3,
		Type:        "  login ",
		Description: "signed in",
		Metadata:    map[string]any{"a": 1},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestActivityAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewActivitySQLite(db)

	mock.ExpectExec("INSERT INTO activity_events").
		WillReturnError(errors.New("down"))

	err = repo.Append(ctx(t), models.ActivityEvent{UserID: 1, Type: "logout", Description: "x"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestActivityList_NoFilters_And_MetadataParsing(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewActivitySQLite(db)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"post_id": 4})

	rows := sqlmock.NewRows([]string{"id", "user_id", "occurred_at", "type", "message", "meta"}).
		AddRow("1", 9, now, "POST_CREATE", "m1", string(js)).
		AddRow("2", 9, now.Add(time.Hour), "LOGOUT", "m2", nil).
		AddRow("3", 9, now.Add(2*time.Hour), "LOGIN", "m3", "not-json")

	mock.ExpectQuery(regexp.QuoteMeta(selectActivitySQL + ` WHERE user_id = ? ORDER BY occurred_at ASC`)).
		WithArgs(9).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), 9, time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3, got %d", len(got))
	}
	b1, _ := json.Marshal(got[0].Metadata)
	if string(b1) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", string(b1), string(js))
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil meta, got %#v", got[1].Metadata)
	}
	if got[2].Metadata != "not-json" {
		t.Fatalf("expected raw meta kept, got %#v", got[2].Metadata)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestActivityList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewActivitySQLite(db)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := selectActivitySQL + ` WHERE user_id = ? AND occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`

	rows := sqlmock.NewRows([]string{"id", "user_id", "occurred_at", "type", "message", "meta"}).
		AddRow("2", 5, from, "ACCESS_DENIED", "b", nil)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(5, "2025-01-01 11:00:00.000000", "2025-01-01 12:00:00.000000", "ACCESS_DENIED").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), 5, from, to, " access_denied ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "2" {
		t.Fatalf("unexpected results: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestActivityList_ScanError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewActivitySQLite(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "occurred_at", "type", "message", "meta"}).
		// occurred_at wrong type to force scan error
		AddRow("x", 1, 123, "LOGIN", "msg", nil)

	mock.ExpectQuery("SELECT id, user_id, occurred_at").WillReturnRows(rows)

	if _, err := repo.List(ctx(t), 1, time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
