package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer guards plain-text fields. Posts and comments are stored exactly
// as typed, so text carrying HTML is refused instead of rewritten.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// HasMarkup reports whether the strict policy would change in. Entities are
// compared decoded so "&" and "&amp;" are plain text either way.
func (s *Sanitizer) HasMarkup(in string) bool {
	if !strings.ContainsAny(in, "<>") {
		return false
	}
	return html.UnescapeString(s.policy.Sanitize(in)) != html.UnescapeString(in)
}

// Field trims v and adds an error for name to ve when v carries markup.
func (s *Sanitizer) Field(ve *ValidationError, name, v string) string {
	v = strings.TrimSpace(v)
	if s.HasMarkup(v) {
		ve.Add(name, fmt.Sprintf("The %s field must not contain HTML.", humanField(name)))
	}
	return v
}
