package logtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARNING"},
		{LevelError, "ERROR"},
		{LevelCritical, "CRITICAL"},
		{Level(99), "LEVEL(?)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		want      Level
		wantError bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"critical", LevelCritical, false},
		{"INFO", LevelInfo, false},
		{"  Warning  ", LevelWarn, false},
		{"fatal", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrConfiguration)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, level)
			}
		})
	}
}

func TestLevelValid(t *testing.T) {
	assert.True(t, LevelDebug.valid())
	assert.True(t, LevelCritical.valid())
	assert.False(t, Level(1).valid())
	assert.False(t, Level(-100).valid())
}
