package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/stackspledge/internal/logger"
)

var (
	// ErrUnauthenticated is returned when a write is attempted without a wallet session
	ErrUnauthenticated = errors.New("no wallet connected")
	// ErrUnauthorized is returned when someone other than the creator completes a pledge
	ErrUnauthorized = errors.New("only the creator can complete this pledge")
	// ErrDuplicateVouch is returned when the caller already vouched for the pledge
	ErrDuplicateVouch = errors.New("already vouched for this pledge")
	// ErrNotFound is returned when a pledge is absent from the cache or the ledger
	ErrNotFound = errors.New("pledge not found")
	// ErrInvalidMessage is returned when a pledge message fails client-side checks
	ErrInvalidMessage = errors.New("invalid pledge message")
	// ErrInvalidCategory is returned for a category outside the known set
	ErrInvalidCategory = errors.New("unknown category")
)

// RemoteCallError wraps a failed call to the ledger (transport failure or rejection).
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Remote wraps err as a RemoteCallError for op. A nil err stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var rce *RemoteCallError
	if errors.As(err, &rce) {
		return err
	}
	return &RemoteCallError{Op: op, Err: err}
}

// IsRemote reports whether err came from a ledger call
func IsRemote(err error) bool {
	var rce *RemoteCallError
	return errors.As(err, &rce)
}

// Notice returns the short human-readable text shown to the user for err.
// fallback is used for remote failures that carry no message.
func Notice(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "Please connect your wallet"
	case errors.Is(err, ErrUnauthorized):
		return "Only the creator can complete this pledge"
	case errors.Is(err, ErrDuplicateVouch):
		return "You have already vouched for this pledge"
	case errors.Is(err, ErrNotFound):
		return "Pledge not found"
	case errors.Is(err, ErrInvalidMessage), errors.Is(err, ErrInvalidCategory):
		return err.Error()
	}

	var rce *RemoteCallError
	if errors.As(err, &rce) {
		if rce.Err != nil && rce.Err.Error() != "" {
			return rce.Err.Error()
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
