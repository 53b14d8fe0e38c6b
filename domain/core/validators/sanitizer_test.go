package validators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Text(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trims edges", input: "  hello  ", expected: "hello"},
		{name: "collapses runs", input: "a   b\t\tc\n\nd", expected: "a b c d"},
		{name: "already clean", input: "already clean", expected: "already clean"},
		{name: "only whitespace", input: " \t\n ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Text(tt.input))
		})
	}
}

func TestSanitizer_DescriptionStripsHTML(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain markup removed",
			input:    "<b>agenda</b> for <i>today</i>",
			expected: "agenda for today",
		},
		{
			name:     "script content dropped entirely",
			input:    "before<script>alert('x')</script>after",
			expected: "beforeafter",
		},
		{
			name:     "iframe dropped",
			input:    `notes <iframe src="https://evil.example"></iframe> end`,
			expected: "notes end",
		},
		{
			name:     "event handler attributes dropped with tag",
			input:    `<div onclick="steal()">content</div>`,
			expected: "content",
		},
		{
			name:     "plain text untouched",
			input:    "plain text",
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Description(tt.input))
		})
	}
}

func TestSanitizer_Email(t *testing.T) {
	s := NewSanitizer()

	assert.Equal(t, "alice@example.com", s.Email("  Alice@Example.COM "))
	assert.Equal(t, "bob@example.org", s.Email("bob@example.org"))
}

func TestSanitizer_Color(t *testing.T) {
	s := NewSanitizer()

	assert.Equal(t, "#FF00AA", s.Color("#ff00aa"))
	assert.Equal(t, "#ABCDEF", s.Color(" #abcdef "))
	// Values that fail the pattern pass through trimmed
	assert.Equal(t, "red", s.Color(" red "))
}

func TestSanitizer_Idempotent(t *testing.T) {
	s := NewSanitizer()

	inputs := []string{
		"  padded   text  ",
		"<b>bold</b> and <script>bad()</script> text",
		"a & b < c",
		"plain",
		`<div onmouseover="x()">hover</div> tail`,
		"multi\n\nline\t\ttext",
	}

	for _, input := range inputs {
		once := s.Description(input)
		twice := s.Description(once)
		assert.Equal(t, once, twice, "Description not idempotent for %q", input)

		textOnce := s.Text(input)
		textTwice := s.Text(textOnce)
		assert.Equal(t, textOnce, textTwice, "Text not idempotent for %q", input)
	}

	for _, input := range []string{"  Alice@Example.COM ", "bob@ex.org"} {
		once := s.Email(input)
		assert.Equal(t, once, s.Email(once))
	}

	for _, input := range []string{"#ff00aa", " #ABCDEF ", "bogus"} {
		once := s.Color(input)
		assert.Equal(t, once, s.Color(once))
	}
}

func TestSanitizer_EventCreate(t *testing.T) {
	s := NewSanitizer()

	input := EventCreateInput{
		Title:       "  Sprint   planning  ",
		Description: "<p>Roadmap <script>alert(1)</script>review</p>",
		Category:    " meeting ",
		Color:       "#a1b2c3",
		StartTime:   time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	out := s.EventCreate(input)

	assert.Equal(t, "Sprint planning", out.Title)
	assert.Equal(t, "Roadmap review", out.Description)
	assert.Equal(t, "meeting", out.Category)
	assert.Equal(t, "#A1B2C3", out.Color)
	// Times pass through untouched
	assert.Equal(t, input.StartTime, out.StartTime)

	// Sanitizing the sanitized payload changes nothing
	assert.Equal(t, out, s.EventCreate(out))
}

func TestSanitizer_EventUpdateOnlyTouchesPresentFields(t *testing.T) {
	s := NewSanitizer()

	title := "  Moved   meeting "
	out := s.EventUpdate(EventUpdateInput{Title: &title})

	assert.Equal(t, "Moved meeting", *out.Title)
	assert.Nil(t, out.Description)
	assert.Nil(t, out.Color)
}
