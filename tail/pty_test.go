package tail

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPtyTailerMergesStreams(t *testing.T) {
	sink := &testSink{}
	cmd := exec.Command("sh", "-c", "echo to stdout; echo to stderr >&2")

	tailer, err := NewPty(sink, cmd, Options{PollInterval: 10 * time.Millisecond})
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	require.NoError(t, tailer.Start())
	waitDone(t, tailer.Tailer)

	// Both streams arrive through the single pty line stream; the pty's
	// CRLF translation is stripped by the assembler
	assert.ElementsMatch(t, []string{"to stdout", "to stderr"}, sink.messages())
	assert.NoError(t, tailer.ExitErr())
	assert.False(t, tailer.Alive())
}

func TestPtyTailerSeesTerminal(t *testing.T) {
	sink := &testSink{}
	cmd := exec.Command("sh", "-c", "if [ -t 1 ]; then echo tty; else echo pipe; fi")

	tailer, err := NewPty(sink, cmd, Options{PollInterval: 10 * time.Millisecond})
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	require.NoError(t, tailer.Start())
	waitDone(t, tailer.Tailer)

	assert.Equal(t, []string{"tty"}, sink.messages())
}
