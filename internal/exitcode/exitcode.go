// Package exitcode maps errors to process exit codes.
package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/taskweave/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// NotFound indicates the backlog document does not exist
	NotFound = 3

	// LockBusy indicates another run holds the document lock
	LockBusy = 4

	// ConfigError indicates invalid configuration
	ConfigError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Coded errors map by code; anything else falls back to message heuristics.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeDocNotFound, errors.ErrCodeTaskNotFound:
		return NotFound
	case errors.ErrCodeLockBusy:
		return LockBusy
	case errors.ErrCodeConfigInvalid, errors.ErrCodeEmbedConfig:
		return ConfigError
	case errors.ErrCodeEmbedUnavailable:
		return NetworkError
	case errors.ErrCodeInsertInvalid:
		return UsageError
	case "":
	default:
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection") {
		return NetworkError
	}
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "accepts") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case NotFound:
		return "Backlog document not found"
	case LockBusy:
		return "Backlog document locked by another run"
	case ConfigError:
		return "Configuration error"
	case NetworkError:
		return "Network error"
	default:
		return "Unknown error"
	}
}
