package device

import (
	"errors"
	"fmt"

	"github.com/raterudder/wifisetup/pkg/types"
)

// Error is returned by Client for any failed request.
type Error struct {
	Kind       types.ErrorKind
	Path       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == types.ErrorKindHTTPStatus {
		return fmt.Sprintf("%s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Anything that is not an *Error is treated as a
// transport failure since it never produced a device response.
func KindOf(err error) types.ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return types.ErrorKindTransport
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.StatusCode
	}
	return 0
}
