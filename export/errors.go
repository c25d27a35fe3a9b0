package export

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for an unknown serialization format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// SerializationError reports a graph artifact that could not be written.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("write graph %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsSerializationError returns true if err is or wraps a SerializationError.
func IsSerializationError(err error) bool {
	var target *SerializationError
	return errors.As(err, &target)
}
