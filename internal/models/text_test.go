package models

import "testing"

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"  hello  ", "hello"},
		{"a\x00b", "ab"},
		{"a\x00\x07b", "ab"},
		{"line1\nline2\tx", "line1\nline2\tx"},
		{"\x00 padded \x1b", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.input); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestNormalize_PatchFields(t *testing.T) {
	t.Parallel()

	title := " Plan\x07 "
	u := TaskUpdate{Title: &title}
	u.Normalize()
	if u.Title == nil || *u.Title != "Plan" {
		t.Errorf("Expected sanitized title %q, got %v", "Plan", u.Title)
	}
	if u.Category != nil {
		t.Errorf("Expected absent category to stay nil, got %q", *u.Category)
	}

	content := "\tnote\x00 body\n"
	c := ContextEntryUpdate{Content: &content}
	c.Normalize()
	if *c.Content != "note body" {
		t.Errorf("Expected sanitized content %q, got %q", "note body", *c.Content)
	}
}
