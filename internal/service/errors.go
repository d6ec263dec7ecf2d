package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"blog_api/internal/policy"
)

// Outcomes the HTTP layer maps to status codes. Anything else is internal.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = policy.ErrForbidden
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError(field, msg string) *ValidationError {
	e := &ValidationError{Fields: map[string][]string{}}
	e.Add(field, msg)
	return e
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Error returns the first message (by field name) and how many more follow.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "the given data was invalid"
	}
	keys := make([]string, 0, len(e.Fields))
	total := 0
	for k, msgs := range e.Fields {
		keys = append(keys, k)
		total += len(msgs)
	}
	sort.Strings(keys)

	first := e.Fields[keys[0]][0]
	switch rest := total - 1; rest {
	case 0:
		return first
	case 1:
		return first + " (and 1 more error)"
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}

// humanField turns "post_id" into "post id" for messages.
func humanField(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
