package logtree

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatArgsScalars(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"strings", []any{"hello", "world"}, "hello world"},
		{"mixed", []any{"count", 42, "ok", true}, "count 42 ok true"},
		{"floats", []any{3.25}, "3.25"},
		{"nil", []any{nil}, "nil"},
		{"error", []any{errors.New("broken pipe")}, "broken pipe"},
		{"duration", []any{1500 * time.Millisecond}, "1.5s"},
		{"bytes", []any{[]byte("raw")}, "raw"},
		{"unsigned", []any{uint64(18446744073709551615)}, "18446744073709551615"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatArgs(DefaultTimestampFormat, tt.args))
		})
	}
}

func TestFormatArgsTime(t *testing.T) {
	ts := time.Date(2026, 5, 17, 14, 3, 59, 0, time.UTC)
	assert.Equal(t, "05-17|14:03:59", formatArgs(DefaultTimestampFormat, []any{ts}))
}

func TestFormatArgsStringer(t *testing.T) {
	assert.Equal(t, "CRITICAL", formatArgs(DefaultTimestampFormat, []any{LevelCritical}))
}

func TestFormatArgsComplexValue(t *testing.T) {
	type payload struct {
		ID   int
		Name string
	}
	out := formatArgs(DefaultTimestampFormat, []any{"got", payload{ID: 7, Name: "geth"}})
	assert.Contains(t, out, "got ")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "geth")
}
