// Package workspace manages the scratch directories a compilation or
// mutation run works in. Every external tool invocation writes and
// reads intermediate files; a Workspace is the one place those files
// live and get cleaned up.
//
// The original implementation kept a process-global stack of workspaces
// (WORKSPACES_STACK, get_workspace/push_workspace/pop_workspace) so
// deeply nested helper functions could reach "the current workspace"
// without threading it through every call. Go's context.Context is the
// idiomatic replacement: callers carry a Workspace explicitly via
// context, and nested helpers recover it with Current instead of
// reaching into global state.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Workspace is a temporary directory plus the bookkeeping needed to move
// files in and out of it.
type Workspace struct {
	dir       string
	resultDir string
}

// Acquire creates a fresh temporary directory under resultDir
// (os.TempDir() when empty) and returns a Workspace over it. Callers
// must call Release when done, typically via defer — the bracket this
// method name is chosen to pair with.
func Acquire(resultDir string) (*Workspace, error) {
	if resultDir == "" {
		resultDir = os.TempDir()
	}
	dir, err := os.MkdirTemp(resultDir, "verihammer-")
	if err != nil {
		return nil, fmt.Errorf("workspace: creating temp dir: %w", err)
	}
	return &Workspace{dir: dir, resultDir: resultDir}, nil
}

// Release removes the workspace's temporary directory and everything
// under it.
func (w *Workspace) Release() error {
	return os.RemoveAll(w.dir)
}

// Dir returns the workspace's temporary directory.
func (w *Workspace) Dir() string { return w.dir }

type contextKey struct{}

// WithCurrent returns a context carrying w, retrievable with
// Current. This replaces the original's global workspace stack: a
// call tree that wants "the current workspace" receives it through ctx
// the same way it already receives cancellation and deadlines.
func WithCurrent(ctx context.Context, w *Workspace) context.Context {
	return context.WithValue(ctx, contextKey{}, w)
}

// Current recovers the Workspace stored by WithCurrent. It panics
// if none was stored, since every code path that needs a workspace runs
// underneath a call that established one — a missing workspace is a
// wiring bug, not a runtime condition to recover from.
func Current(ctx context.Context) *Workspace {
	w, ok := ctx.Value(contextKey{}).(*Workspace)
	if !ok {
		panic("workspace: no Workspace in context")
	}
	return w
}

// PathToTempFile returns the absolute path to filename under the
// workspace. When unique is true and a file with that name already
// exists, a numeric suffix is appended to the name (before its
// extension) until the path is free. It does not create the file.
func (w *Workspace) PathToTempFile(filename string, unique bool) string {
	path := filepath.Join(w.dir, filename)
	if !unique {
		return path
	}
	ext := filepath.Ext(filename)
	stem := filename[:len(filename)-len(ext)]
	for suffix := 0; fileExists(path); suffix++ {
		path = filepath.Join(w.dir, fmt.Sprintf("%s%d%s", stem, suffix, ext))
	}
	return path
}

// PathToTempDir returns the absolute path to a subdirectory of the
// workspace, uniquified the same way as PathToTempFile. It does not
// create the directory.
func (w *Workspace) PathToTempDir(dirname string, unique bool) string {
	path := filepath.Join(w.dir, dirname)
	if !unique {
		return path
	}
	for suffix := 0; fileExists(path); suffix++ {
		path = filepath.Join(w.dir, fmt.Sprintf("%s%d", dirname, suffix))
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SaveToFile writes content to filename under the workspace (uniquified
// by default) and returns its absolute path.
func (w *Workspace) SaveToFile(content []byte, filename string) (string, error) {
	path := w.PathToTempFile(filename, true)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("workspace: writing %s: %w", path, err)
	}
	return path, nil
}

// SaveAs copies every file under the workspace's directory (other than
// test*/assembly.ll/run*stats intermediates, which are regenerated on
// demand and would just bloat the archive) into a freshly named
// subdirectory of resultDir, for preserving evidence of a crash or a
// non-equivalence finding after the workspace itself is torn down.
func (w *Workspace) SaveAs(resultDir, label string) (string, error) {
	dst := filepath.Join(resultDir, label, w.freshName())
	if err := copyTreeFiltered(w.dir, dst); err != nil {
		return "", fmt.Errorf("workspace: saving as %s: %w", label, err)
	}
	return dst, nil
}

func (w *Workspace) freshName() string {
	return fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405_000000"), filepath.Base(w.dir))
}

func copyTreeFiltered(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if isIgnoredArtifact(name) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode())
	})
}

func isIgnoredArtifact(name string) bool {
	if matched, _ := filepath.Match("test*", name); matched {
		return true
	}
	if matched, _ := filepath.Match("run*stats", name); matched {
		return true
	}
	return name == "assembly.ll"
}
