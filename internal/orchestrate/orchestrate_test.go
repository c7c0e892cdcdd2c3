package orchestrate

import (
	"testing"

	"verihammer/internal/toolchain"
)

func TestNew_DefaultsRandWhenNil(t *testing.T) {
	o := New(t.TempDir(), 2, toolchain.New(nil), nil)
	if o.Rand == nil {
		t.Fatal("New() left Rand nil")
	}
	if o.Pool.Concurrency() != 2 {
		t.Errorf("Pool.Concurrency() = %d, want 2", o.Pool.Concurrency())
	}
}
