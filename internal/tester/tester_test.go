package tester

import "testing"

func TestDescribe(t *testing.T) {
	if got := describe(nil); got != "" {
		t.Fatalf("empty args: %q", got)
	}
	if got := describe([]any{"call %d", 3}); got != "call 3: " {
		t.Fatalf("format args: %q", got)
	}
	if got := describe([]any{42}); got != "42" {
		t.Fatalf("non-string first arg: %q", got)
	}
}
