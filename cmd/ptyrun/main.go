// ptyrun runs a command under a pseudo-terminal and a logger tree, for
// programs that buffer or decolorize their output when attached to a
// pipe. The pty merges stdout and stderr into one logged stream.
//
// Usage:
//
//	ptyrun [flags] -- command [args...]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/coriolin/logtree"
	"github.com/coriolin/logtree/tail"
)

func main() {
	var (
		dir     = flag.String("dir", "", "log directory")
		level   = flag.String("level", "info", "minimum severity")
		name    = flag.String("name", "ptyrun", "root logger name")
		cleanup = flag.Bool("cleanup", false, "remove empty log files on exit")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ptyrun [flags] -- command [args...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	root, err := logtree.NewBuilder().
		Name(*name).
		LevelString(*level).
		Directory(*dir).
		CleanupEmpty(*cleanup).
		Build()
	if err != nil {
		fatal(err)
	}

	cmd := exec.Command(args[0], args[1:]...)
	child, err := root.NewChild(filepath.Base(args[0]))
	if err != nil {
		fatal(err)
	}

	tailer, err := tail.NewPty(child, cmd, tail.Options{})
	if err != nil {
		fatal(err)
	}
	if err := tailer.Start(); err != nil {
		fatal(err)
	}
	tailer.Wait()

	code := 0
	var exitErr *exec.ExitError
	if werr := tailer.ExitErr(); errors.As(werr, &exitErr) {
		code = exitErr.ExitCode()
	} else if werr != nil {
		code = 1
	}
	if err := root.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "ptyrun: %v\n", err)
	}
	os.Exit(code)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ptyrun: %v\n", err)
	os.Exit(1)
}
