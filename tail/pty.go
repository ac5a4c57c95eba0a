package tail

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// PtyTailer supervises a subprocess whose stdin, stdout, and stderr are
// a pseudo-terminal, for programs that change behavior when not talking
// to one. The pty merges stdout and stderr into a single line stream.
type PtyTailer struct {
	*Tailer
	cmd     *exec.Cmd
	master  *os.File
	tty     *os.File
	exited  chan struct{}
	waitErr error
}

// NewPty allocates a pseudo-terminal and wires a not-yet-started
// command to it. Call Start to launch the command and begin draining
// the master side.
func NewPty(sink RecordSink, cmd *exec.Cmd, opts Options) (*PtyTailer, error) {
	if cmd.Process != nil {
		return nil, fmtErrorf("command %s is already started", cmd.Path)
	}
	master, tty, err := pty.Open()
	if err != nil {
		return nil, fmtErrorf("failed to allocate pty: %w", err)
	}
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	p := &PtyTailer{
		cmd:    cmd,
		master: master,
		tty:    tty,
		exited: make(chan struct{}),
	}
	p.Tailer = New(sink, p.Alive, opts, master)
	return p, nil
}

// Start launches the command under its pty and begins draining.
func (p *PtyTailer) Start() error {
	if err := p.cmd.Start(); err != nil {
		p.tty.Close()
		p.master.Close()
		return fmtErrorf("failed to start %s: %w", p.cmd.Path, err)
	}
	// The child now owns the tty end; when it exits, reads on the
	// master error out and end the reader task.
	p.tty.Close()
	go func() {
		p.waitErr = p.cmd.Wait()
		close(p.exited)
	}()
	return p.Tailer.Start()
}

// Alive reports whether the supervised process is still running.
func (p *PtyTailer) Alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Master returns the controlling side of the pty, for callers that need
// to write input to the supervised program.
func (p *PtyTailer) Master() *os.File { return p.master }

// Process returns the underlying command.
func (p *PtyTailer) Process() *exec.Cmd { return p.cmd }

// ExitErr blocks until the process has been reaped and returns the
// error from its exit, nil for a zero exit status.
func (p *PtyTailer) ExitErr() error {
	<-p.exited
	return p.waitErr
}
