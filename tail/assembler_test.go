package tail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedString(a *LineAssembler, s string) []string {
	var lines []string
	for i := 0; i < len(s); i++ {
		if text, _, complete := a.Feed(s[i]); complete {
			lines = append(lines, text)
		}
	}
	return lines
}

func TestAssemblerSplitsLines(t *testing.T) {
	a := NewLineAssembler('\n')

	lines := feedString(a, "first\nsecond\nthird")
	assert.Equal(t, []string{"first", "second"}, lines)

	// The trailing partial stays buffered
	assert.Equal(t, 5, a.Pending())
}

func TestAssemblerEmptyLines(t *testing.T) {
	a := NewLineAssembler('\n')
	lines := feedString(a, "\n\nx\n")
	assert.Equal(t, []string{"", "", "x"}, lines)
	assert.Zero(t, a.Pending())
}

func TestAssemblerTrimsCR(t *testing.T) {
	a := NewLineAssembler('\n')
	lines := feedString(a, "windows line\r\n")
	assert.Equal(t, []string{"windows line"}, lines)
}

func TestAssemblerCustomDelimiter(t *testing.T) {
	a := NewLineAssembler(0)
	lines := feedString(a, "alpha\x00beta\x00")
	assert.Equal(t, []string{"alpha", "beta"}, lines)
}

func TestAssemblerSanitizes(t *testing.T) {
	a := NewLineAssembler('\n')

	var text string
	var sanitized bool
	for i := 0; i < len("bell\a\n"); i++ {
		text, sanitized, _ = a.Feed("bell\a\n"[i])
	}
	assert.Equal(t, "bell<07>", text)
	assert.True(t, sanitized)

	for i := 0; i < len("clean\n"); i++ {
		text, sanitized, _ = a.Feed("clean\n"[i])
	}
	assert.Equal(t, "clean", text)
	assert.False(t, sanitized)
}
