package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	in := []interface{}{"user_id", "u1", "admin_password", "hunter2", "Authorization", "Bearer x", "dangling"}
	out := sanitizeKVs(in)

	want := []interface{}{"user_id", "u1", "admin_password", "[REDACTED]", "Authorization", "[REDACTED]", "dangling"}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}
