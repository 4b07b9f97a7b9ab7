package main

import "testing"

func TestNewRootCmdHasEverySubcommand(t *testing.T) {
	root := newRootCmd()

	want := []string{"scan", "verify", "compare", "dedup", "benchmark", "list"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatalf("root.Find(%q) error: %v", name, err)
		}
		if cmd.Name() != name {
			t.Errorf("root.Find(%q) resolved to %q", name, cmd.Name())
		}
		if !cmd.SilenceErrors || !cmd.SilenceUsage {
			t.Errorf("%s: SilenceErrors/SilenceUsage should both be set", name)
		}
	}
}

func TestNewRootCmdAcceptsArbitraryArgs(t *testing.T) {
	root := newRootCmd()
	if err := root.Args(root, []string{"a.txt", "b.txt"}); err != nil {
		t.Errorf("root should accept arbitrary positional args: %v", err)
	}
}

func TestModeFor(t *testing.T) {
	if got := modeFor(false); got.String() != "normal" {
		t.Errorf("modeFor(false) = %v, want normal", got)
	}
	if got := modeFor(true); got.String() != "fast" {
		t.Errorf("modeFor(true) = %v, want fast", got)
	}
}
