package ontology

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when no parser matches a source.
var ErrUnknownFormat = errors.New("unknown ontology format")

// LoadError reports a base ontology that could not be fetched or parsed.
// A build that hits it adds no triples.
type LoadError struct {
	URI string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load ontology %s: %v", e.URI, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if err is or wraps a LoadError.
func IsLoadError(err error) bool {
	var target *LoadError
	return errors.As(err, &target)
}
