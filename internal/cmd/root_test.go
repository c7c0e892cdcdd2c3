package cmd

import "testing"

func TestNewRootCmd_RegistersEveryOperation(t *testing.T) {
	root := NewRootCmd()

	want := []string{"replay", "batch-test", "regression-test", "mutate"}
	got := map[string]bool{}
	for _, sub := range root.Commands() {
		got[sub.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("root command missing subcommand %q", name)
		}
	}

	for _, name := range []string{"result-dir", "n-jobs", "seed"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("root command missing persistent flag --%s", name)
		}
	}
}

func TestBatchTestCmd_RejectsUnknownKindName(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"batch-test", t.TempDir(), "vhdl", "verilog", "3"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an unrecognized circuit kind")
	}
}
