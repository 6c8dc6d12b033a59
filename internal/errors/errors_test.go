package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestNotice(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "unauthenticated", err: ErrUnauthenticated, expected: "Please connect your wallet"},
		{name: "wrapped unauthorized", err: fmt.Errorf("complete 3: %w", ErrUnauthorized), expected: "Only the creator can complete this pledge"},
		{name: "duplicate vouch", err: ErrDuplicateVouch, expected: "You have already vouched for this pledge"},
		{name: "not found", err: ErrNotFound, expected: "Pledge not found"},
		{name: "unknown category", err: fmt.Errorf("%w %q", ErrInvalidCategory, "gaming"), expected: `unknown category "gaming"`},
		{name: "remote with message", err: Remote("vouch-for-pledge", errors.New("connection refused")), expected: "connection refused"},
		{name: "remote without cause", err: &RemoteCallError{Op: "complete-pledge"}, expected: "Failed to complete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Notice(tt.err, "Failed to complete"); got != tt.expected {
				t.Errorf("Notice(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRemote(t *testing.T) {
	if Remote("get-pledge", nil) != nil {
		t.Error("Remote(nil) should stay nil")
	}

	cause := errors.New("timeout")
	err := Remote("get-pledge", cause)
	if !IsRemote(err) {
		t.Fatalf("IsRemote(%v) = false, want true", err)
	}
	if !errors.Is(err, cause) {
		t.Error("RemoteCallError should unwrap to its cause")
	}
	if err.Error() != "get-pledge: timeout" {
		t.Errorf("Error() = %q", err.Error())
	}

	// Wrapping twice keeps the first operation name
	again := Remote("fetch", err)
	var rce *RemoteCallError
	if !errors.As(again, &rce) || rce.Op != "get-pledge" {
		t.Errorf("re-wrapped op = %v, want get-pledge", rce)
	}

	if IsRemote(ErrNotFound) {
		t.Error("IsRemote(ErrNotFound) = true, want false")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("something went wrong"), expected: "Error: something went wrong"},
		{name: "sentinel", err: ErrNotFound, expected: "Error: pledge not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	if got := Formatf("pledge %d not found", 7); got != "Error: pledge 7 not found" {
		t.Errorf("Formatf() = %q", got)
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
