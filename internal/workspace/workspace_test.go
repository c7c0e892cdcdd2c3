package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquire_CreatesAndReleasesDir(t *testing.T) {
	w, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := os.Stat(w.Dir()); err != nil {
		t.Fatalf("workspace dir does not exist: %v", err)
	}
	if err := w.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(w.Dir()); !os.IsNotExist(err) {
		t.Errorf("expected workspace dir to be removed after Release()")
	}
}

func TestWithCurrent_RoundTrip(t *testing.T) {
	w, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer w.Release()

	ctx := WithCurrent(context.Background(), w)
	got := Current(ctx)
	if got != w {
		t.Error("Current() did not return the workspace stored by WithCurrent()")
	}
}

func TestCurrent_PanicsWithoutWorkspace(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Current() to panic when no workspace was stored")
		}
	}()
	Current(context.Background())
}

func TestPathToTempFile_Uniquifies(t *testing.T) {
	w, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer w.Release()

	first := w.PathToTempFile("mutant.v", true)
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	second := w.PathToTempFile("mutant.v", true)
	if second == first {
		t.Errorf("expected a uniquified path, got the same path twice: %s", first)
	}
}

func TestSaveToFile_WritesContent(t *testing.T) {
	w, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer w.Release()

	path, err := w.SaveToFile([]byte("module m; endmodule"), "mutant.v")
	if err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "module m; endmodule" {
		t.Errorf("SaveToFile() wrote %q", got)
	}
}

func TestSaveAs_CopiesFilesExcludingIgnoredArtifacts(t *testing.T) {
	w, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer w.Release()

	if _, err := w.SaveToFile([]byte("keep"), "report.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.SaveToFile([]byte("skip"), "assembly.ll"); err != nil {
		t.Fatal(err)
	}

	resultDir := t.TempDir()
	dst, err := w.SaveAs(resultDir, "non-equivalence")
	if err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "report.md")); err != nil {
		t.Errorf("expected report.md to be copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "assembly.ll")); !os.IsNotExist(err) {
		t.Errorf("expected assembly.ll to be excluded from the saved copy")
	}
}
