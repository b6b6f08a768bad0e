package testutil

import (
	"testing"
	"time"
)

// Eventually polls cond every millisecond until it returns true, failing the
// test with msg if timeout passes first.
func Eventually(t testing.TB, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v: %s", timeout, msg)
		}
		time.Sleep(time.Millisecond)
	}
}
