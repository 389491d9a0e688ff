package pii

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactFreeText(t *testing.T) {
	t.Run("all canonical formats", func(t *testing.T) {
		text := "Reach jsmith@example.com or (555) 123-4567. ID 123-45-6789. Thanks, Sara Jenkins"
		got := RedactFreeText(text, []string{"Sara Jenkins"})
		assert.Equal(t,
			"Reach [REDACTED EMAIL] or [REDACTED PHONE NUMBER]. ID [REDACTED NATIONAL ID]. Thanks, [REDACTED NAME]",
			got)
	})

	t.Run("multi-line comment with voter's own names", func(t *testing.T) {
		text := `
I (Alex) am so proud to be voting for the first time ever! If there are any problems with my vote please reach out to me at
(345) 553-2335. I'm also available over email at sjenkins@email.co.atlantis.

Best,

Sara Jenkins
ID: 234-23-2342
`
		got := RedactFreeText(text, []string{"Alex"})
		assert.Contains(t, got, "ID: [REDACTED NATIONAL ID]")
		assert.Contains(t, got, "[REDACTED PHONE NUMBER]")
		assert.Contains(t, got, "[REDACTED EMAIL].")
		assert.Contains(t, got, "I ([REDACTED NAME]) am so proud")
		assert.NotContains(t, got, "553-2335")
		assert.NotContains(t, got, "sjenkins")
	})

	tests := []struct {
		name  string
		text  string
		names []string
		want  string
	}{
		{"dashed phone", "call 555-123-4567 now", nil, "call [REDACTED PHONE NUMBER] now"},
		{"bare national id", "id 123456789", nil, "id [REDACTED NATIONAL ID]"},
		{"spaced national id", "id 123 45 6789", nil, "id [REDACTED NATIONAL ID]"},
		{"no pii untouched", "Vote early, vote often!", []string{"Bob"}, "Vote early, vote often!"},
		{"empty names ignored", "hello", []string{"", "  "}, "hello"},
		{"longest name first", "Anna and Ann", []string{"Ann", "Anna"}, "[REDACTED NAME] and [REDACTED NAME]"},
		{"first and last separately", "Sara Jenkins", []string{"Sara", "Jenkins"}, "[REDACTED NAME] [REDACTED NAME]"},
		{"empty text", "", []string{"Sara"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactFreeText(tt.text, tt.names))
		})
	}
}
