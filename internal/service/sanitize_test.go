package service

import "testing"

func TestSanitizer_HasMarkup(t *testing.T) {
	t.Parallel()

	s := NewSanitizer()
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"plain text", "Hello world", false},
		{"ampersand and quotes", `Tom & Jerry's "show"`, false},
		{"escaped entity", "fish &amp; chips", false},
		{"comparison", "a < b and c > d", false},
		{"inline tag", "<b>bold</b> move", true},
		{"unclosed tag", "use <div> here", true},
		{"script", `<script>alert(1)</script>hi`, true},
		{"empty element", "<b></b>", true},
		{"empty", "", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := s.HasMarkup(tc.in); got != tc.want {
				t.Fatalf("HasMarkup(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizer_Field(t *testing.T) {
	s := NewSanitizer()
	ve := &ValidationError{}

	if got := s.Field(ve, "title", "  spaced  "); got != "spaced" {
		t.Fatalf("Field trimmed to %q", got)
	}
	if len(ve.Fields) != 0 {
		t.Fatalf("plain text must not add errors: %v", ve.Fields)
	}

	if got := s.Field(ve, "text", "use <div> here"); got != "use <div> here" {
		t.Fatalf("markup must not be rewritten, got %q", got)
	}
	want := "The text field must not contain HTML."
	if msgs := ve.Fields["text"]; len(msgs) != 1 || msgs[0] != want {
		t.Fatalf("unexpected errors: %v", ve.Fields)
	}
}
