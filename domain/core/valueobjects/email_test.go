package valueobjects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "simple address",
			input:    "alice@example.com",
			expected: "alice@example.com",
		},
		{
			name:     "uppercase is lowercased",
			input:    "Alice@Example.COM",
			expected: "alice@example.com",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  bob@example.org  ",
			expected: "bob@example.org",
		},
		{
			name:     "plus addressing",
			input:    "carol+cal@example.io",
			expected: "carol+cal@example.io",
		},
		{name: "empty", input: "", wantErr: true},
		{name: "missing at sign", input: "nobody.example.com", wantErr: true},
		{name: "missing domain", input: "dave@", wantErr: true},
		{name: "missing tld", input: "dave@localhost", wantErr: true},
		{name: "spaces inside", input: "da ve@example.com", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 250) + "@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := NewEmail(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, email.IsZero())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, email.String())
			}
		})
	}
}

func TestEmail_NormalizationMakesEqual(t *testing.T) {
	a, err := NewEmail("Alice@Example.com")
	require.NoError(t, err)
	b, err := NewEmail("alice@example.com ")
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
}
