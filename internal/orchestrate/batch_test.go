package orchestrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRTLFiles_FiltersByExtensionRecursively(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(path string) {
		if err := os.WriteFile(path, []byte("module m; endmodule"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(dir, "a.v"))
	write(filepath.Join(sub, "b.v"))
	write(filepath.Join(dir, "c.sv"))

	got, err := findRTLFiles(dir, ".v")
	if err != nil {
		t.Fatalf("findRTLFiles() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("findRTLFiles() = %v, want 2 .v files", got)
	}
}
