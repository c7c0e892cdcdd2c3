package orchestrate

import (
	"context"
	"testing"

	"verihammer/internal/toolchain"
)

func TestRegressionTest_EmptyDirectoryIsANoOp(t *testing.T) {
	o := New(t.TempDir(), 1, toolchain.New(nil), nil)
	if err := RegressionTest(context.Background(), o, t.TempDir(), ".v"); err != nil {
		t.Errorf("RegressionTest() on an empty directory = %v, want nil", err)
	}
}
