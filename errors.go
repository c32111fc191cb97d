package wiresim

import (
	"errors"
	"fmt"
)

// ErrNotRegistered indicates an exchange that was not produced through
// Context.NewExchange was passed to Schedule. It signals caller misuse
// and is the only error raised synchronously; simulated transport
// failures travel through the activity stream instead.
var ErrNotRegistered = errors.New("wiresim: exchange not registered with a dispatch context")

// TransferError wraps a simulated transport failure with the operation
// and URL it belongs to. It is surfaced as a KindFailure event after the
// exchange's terminal marker, never returned from Perform.
type TransferError struct {
	// Op is the simulated operation that failed: "write" (request body)
	// or "read" (response body).
	Op string

	// URL is the exchange's request URL.
	URL string

	// Err is the underlying cause.
	Err error
}

func (e *TransferError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("wiresim: %s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("wiresim: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// ShortBodyError reports a response body that ended before reaching its
// declared content-length.
type ShortBodyError struct {
	Declared int64 // bytes promised by the content-length header
	Got      int64 // bytes actually delivered
}

// Missing is the number of declared bytes that never arrived.
func (e *ShortBodyError) Missing() int64 {
	return e.Declared - e.Got
}

func (e *ShortBodyError) Error() string {
	if m := e.Missing(); m < 0 {
		return fmt.Sprintf("body exceeded declared content-length %d by %d bytes", e.Declared, -m)
	}
	return fmt.Sprintf("body ended %d bytes short of declared content-length %d", e.Missing(), e.Declared)
}
