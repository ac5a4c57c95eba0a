package logtree

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// AssignDirectory gives the node a durable directory for its log file
// and any logged artifacts. Assigning the path already held is a no-op.
// A node that was placed in a transient directory at attachment time has
// its accumulated contents migrated to the new path; a node that already
// holds a different durable directory rejects the reassignment. The
// assignment recurses into children, each under a subdirectory named
// after it.
func (n *Node) AssignDirectory(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmtErrorf("failed to resolve directory %s: %w", path, err)
	}
	if n.directory == abs {
		return nil
	}
	if n.directory != "" && n.tmpDir == "" {
		return configErrorf("log directory is already set to %s", n.directory)
	}
	if n.tmpDir != "" {
		return n.migrate(abs)
	}
	return n.assign(abs)
}

func (n *Node) assign(abs string) error {
	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmtErrorf("failed to create log directory %s: %w", abs, err)
	}
	n.directory = abs

	h, err := NewFileHandler(filepath.Join(abs, n.name+".log"), &PlainRenderer{
		TimestampFormat: n.console.timestampFormat,
	})
	if err != nil {
		return err
	}
	h.SetLevel(LevelDebug)
	n.addHandler(h, false, false, true)

	for _, child := range n.children {
		if err := child.AssignDirectory(filepath.Join(abs, child.name)); err != nil {
			return err
		}
	}
	return nil
}

// migrate moves the node's transient directory tree, accumulated log
// files included, to its durable home and repoints every file handler in
// the subtree at the relocated paths.
func (n *Node) migrate(abs string) error {
	oldDir := n.directory

	var reopen []*FileHandler
	n.walk(func(node *Node) {
		for _, h := range node.owned {
			fh, ok := h.(*FileHandler)
			if !ok {
				continue
			}
			if rel, err := filepath.Rel(oldDir, fh.Path()); err == nil && filepath.IsLocal(rel) {
				_ = fh.Close()
				reopen = append(reopen, fh)
			}
		}
	})

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmtErrorf("failed to create log directory %s: %w", abs, err)
	}
	if err := moveTree(oldDir, abs); err != nil {
		return fmtErrorf("failed to migrate log directory %s to %s: %w", oldDir, abs, err)
	}
	n.tmpDir = ""

	n.walk(func(node *Node) {
		if rel, err := filepath.Rel(oldDir, node.directory); err == nil && (rel == "." || filepath.IsLocal(rel)) {
			node.directory = filepath.Join(abs, rel)
		}
	})
	for _, fh := range reopen {
		rel, err := filepath.Rel(oldDir, fh.Path())
		if err != nil {
			continue
		}
		if err := fh.reopen(filepath.Join(abs, rel)); err != nil {
			return err
		}
	}
	return nil
}

// walk visits n and every descendant, parents before children.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		child.walk(fn)
	}
}

// moveTree relocates a directory, falling back to a copy when the
// source and destination sit on different filesystems.
func moveTree(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyTree(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}

// CreateLoggedFile opens a fresh artifact file under the node's
// directory, named prefix+suffix or, when taken, prefix2+suffix,
// prefix3+suffix and so on. A non-empty subdir places the file in that
// subdirectory, created on demand. The caller owns the returned file;
// concurrent callers racing on the same prefix are serialized by the
// exclusive-create open, but each returned file has a single writer.
func (n *Node) CreateLoggedFile(prefix, suffix, subdir string) (*os.File, error) {
	if n.directory == "" {
		return nil, configErrorf("logger %s has no directory for logged file %s%s", n.name, prefix, suffix)
	}
	dir := n.directory
	if subdir != "" {
		dir = filepath.Join(dir, subdir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmtErrorf("failed to create log subdirectory %s: %w", dir, err)
		}
	}
	for i := 1; ; i++ {
		name := prefix + suffix
		if i > 1 {
			name = prefix + strconv.Itoa(i) + suffix
		}
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmtErrorf("failed to create logged file %s: %w", name, err)
		}
	}
}

// CreateConstantLoggedFile writes a fixed artifact under the node's
// directory using the same collision-avoiding naming as
// CreateLoggedFile, and returns its absolute path.
func (n *Node) CreateConstantLoggedFile(contents []byte, prefix, suffix, subdir string) (string, error) {
	f, err := n.CreateLoggedFile(prefix, suffix, subdir)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(contents); err != nil {
		f.Close()
		return "", fmtErrorf("failed to write logged file %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmtErrorf("failed to write logged file %s: %w", f.Name(), err)
	}
	return filepath.Abs(f.Name())
}

// ToLogPath rewrites an absolute path inside the node's directory as a
// path relative to it, for display. Paths outside the directory, or any
// path when no directory is assigned, come back unchanged.
func (n *Node) ToLogPath(path string) string {
	if n.directory == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(n.directory, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return path
	}
	return rel
}

// Close releases the subtree, children first. With empty-file cleanup
// enabled, log files this node's own handlers left empty are removed,
// and directories left empty as a result are pruned. Transient
// directories that never migrated are discarded entirely. Close is
// idempotent.
func (n *Node) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true

	var finalErr error
	for _, child := range n.children {
		finalErr = combineErrors(finalErr, child.Close())
	}

	var emptyFiles []string
	for _, h := range n.owned {
		if fh, ok := h.(*FileHandler); ok && n.cleanupEmpty {
			path := fh.Path()
			finalErr = combineErrors(finalErr, fh.Close())
			if info, err := os.Stat(path); err == nil && info.Size() == 0 {
				emptyFiles = append(emptyFiles, path)
			}
			continue
		}
		finalErr = combineErrors(finalErr, h.Close())
	}
	for _, path := range emptyFiles {
		finalErr = combineErrors(finalErr, os.Remove(path))
	}
	if n.cleanupEmpty && n.directory != "" {
		pruneEmptyDirs(n.directory)
	}

	if n.tmpDir != "" {
		finalErr = combineErrors(finalErr, os.RemoveAll(n.tmpDir))
		n.tmpDir = ""
	}
	return finalErr
}

// pruneEmptyDirs removes every empty directory under root, deepest
// first, then root itself if nothing remains in it.
func pruneEmptyDirs(root string) {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		// Fails on non-empty directories, which is the point.
		_ = os.Remove(dir)
	}
}
