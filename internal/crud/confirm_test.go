package crud

import "testing"

func TestGate_ConfirmInvokesActionExactlyOnce(t *testing.T) {
	var calls []string
	gate := NewGate(func(item string) { calls = append(calls, item) })

	gate.Request("X")
	if !gate.IsOpen() {
		t.Fatal("gate should be open after Request")
	}

	gate.Confirm()
	if len(calls) != 1 || calls[0] != "X" {
		t.Fatalf("calls = %v, want exactly [X]", calls)
	}
	if gate.IsOpen() {
		t.Error("gate should be closed after Confirm")
	}

	// A second confirm without a new request must not re-invoke.
	gate.Confirm()
	if len(calls) != 1 {
		t.Errorf("calls after stray Confirm = %d, want 1", len(calls))
	}
}

func TestGate_CancelNeverInvokesAction(t *testing.T) {
	invoked := false
	gate := NewGate(func(string) { invoked = true })

	gate.Request("X")
	gate.Cancel()

	if invoked {
		t.Error("action invoked after Cancel")
	}
	if gate.IsOpen() {
		t.Error("gate should be closed after Cancel")
	}
	if _, ok := gate.Pending(); ok {
		t.Error("pending item should be discarded after Cancel")
	}
}

func TestGate_RequestReplacesPending(t *testing.T) {
	var got string
	gate := NewGate(func(item string) { got = item })

	gate.Request("first")
	gate.Request("second")
	gate.Confirm()

	if got != "second" {
		t.Errorf("confirmed item = %q, want %q", got, "second")
	}
}

func TestGate_NilAction(t *testing.T) {
	gate := NewGate[int](nil)
	gate.Request(7)
	gate.Confirm() // must not panic
	if gate.IsOpen() {
		t.Error("gate should close even without an action")
	}
}
