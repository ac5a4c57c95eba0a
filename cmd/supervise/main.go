// supervise runs a command under a logger tree, draining its stdout
// and stderr into per-process log files and the console.
//
// Usage:
//
//	supervise [flags] -- command [args...]
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
		configPath = flag.String("config", "", "TOML configuration file")
		dir        = flag.String("dir", "", "log directory (overrides config)")
		level      = flag.String("level", "", "minimum severity (overrides config)")
		name       = flag.String("name", "", "root logger name (overrides config)")
		cleanup    = flag.Bool("cleanup", false, "remove empty log files on exit")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: supervise [flags] -- command [args...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if *dir != "" {
		cfg.Directory = *dir
	}
	if *level != "" {
		cfg.Level = *level
	}
	if *name != "" {
		cfg.Name = *name
	}
	if *cleanup {
		cfg.CleanupEmpty = true
	}

	root, err := logtree.NewRootFromConfig(cfg)
	if err != nil {
		fatal(err)
	}

	exitCode, err := run(root, args)
	if cerr := root.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "supervise: %v\n", cerr)
	}
	if err != nil {
		fatal(err)
	}
	os.Exit(exitCode)
}

func loadConfig(path string) (*logtree.Config, error) {
	if path == "" {
		return logtree.DefaultConfig(), nil
	}
	return logtree.NewConfigFromFile(path)
}

func run(root *logtree.Node, args []string) (int, error) {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin

	child, err := root.NewChild(processName(args[0]))
	if err != nil {
		return 1, err
	}

	tailer, err := tail.NewProcess(child, cmd, tail.Options{
		PollInterval: tail.DefaultPollInterval,
	})
	if err != nil {
		return 1, err
	}

	root.Info("starting", args[0])
	if err := tailer.Start(); err != nil {
		return 1, err
	}
	tailer.Wait()

	var exitErr *exec.ExitError
	werr := tailer.ExitErr()
	switch {
	case werr == nil:
		root.Info(args[0], "exited cleanly")
		return 0, nil
	case errors.As(werr, &exitErr):
		root.Error(args[0], "exited with status", exitErr.ExitCode())
		return exitErr.ExitCode(), nil
	default:
		return 1, werr
	}
}

// processName derives a child logger name from the command path.
func processName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == "/" {
		return "process"
	}
	return base
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "supervise: %v\n", err)
	os.Exit(1)
}
