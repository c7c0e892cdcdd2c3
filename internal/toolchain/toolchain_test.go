package toolchain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun_UnresolvedBinary(t *testing.T) {
	loc := Locator{Overrides: map[string]string{"yosys": "/no/such/binary"}}
	_, err := run(context.Background(), loc, "yosys", DefaultTimeout, nil, "-version")
	if err == nil {
		t.Fatal("expected an error for an unresolvable binary")
	}
}

func TestRun_Timeout(t *testing.T) {
	loc := Locator{Overrides: map[string]string{"sleep": "/bin/sleep"}}
	_, err := run(context.Background(), loc, "sleep", 10*time.Millisecond, nil, "1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Tool: "yosys", Args: []string{"-p", "foo"}, ExitCode: 2, Stderr: "boom"}
	if got := err.Error(); got == "" {
		t.Fatal("Error() returned empty string")
	}
}
