package zid

import (
	"errors"
	"fmt"
)

var (
	// ErrCommunication wraps transport failures: timeouts, connection
	// errors, unparseable bodies. Communication failures are the only
	// class worth retrying.
	ErrCommunication = errors.New("zid: communication failure")

	// ErrUnauthorized covers 401/403 responses. The connector's
	// credentials are broken; retrying cannot help.
	ErrUnauthorized = errors.New("zid: unauthorized")
)

// RemoteError is a structured rejection from the platform: the request
// arrived, was understood, and was refused. Not retryable; the remote
// message is surfaced to the operator.
type RemoteError struct {
	StatusCode int
	Message    string
	Details    []string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("zid: remote rejected request (HTTP %d): %s: %v", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("zid: remote rejected request (HTTP %d): %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the error is transient and a later retry
// could succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCommunication)
}
