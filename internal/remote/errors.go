package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrDisabled is returned when remote access is turned off and no cached
	// response exists.
	ErrDisabled = errors.New("remote: network access disabled")
)

// StatusError reports a non-2xx API response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: GET %s returned status %d", e.URL, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
