package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net"

	"aurorawatch/internal/models"
)

// ErrorKind classifies why a source could not produce a record.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindTimeout ErrorKind = "timeout"
	KindStatus  ErrorKind = "status"
	KindParse   ErrorKind = "parse"
	KindMissing ErrorKind = "missing"
)

// ErrSourceDisabled is the cause reported for a source with no configured URL.
var ErrSourceDisabled = errors.New("source disabled")

// FetchError is the only error type returned by FeedClient.Fetch.
type FetchError struct {
	Source models.Source
	Kind   ErrorKind
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of a *FetchError anywhere in err's chain, or
// KindNetwork for any other non-nil error.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}

func newError(source models.Source, kind ErrorKind, cause error) *FetchError {
	return &FetchError{Source: source, Kind: kind, Cause: cause}
}

func missingf(source models.Source, format string, args ...interface{}) *FetchError {
	return newError(source, KindMissing, fmt.Errorf(format, args...))
}

// transportError maps a failed round trip to network or timeout.
func transportError(source models.Source, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(source, KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(source, KindTimeout, err)
	}
	return newError(source, KindNetwork, err)
}
