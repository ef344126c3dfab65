package resolver

import (
	"errors"
	"fmt"

	"github.com/cbout22/git-file/internal/config"
)

// Causes carried by FetchError.
var (
	ErrCloneFailed          = errors.New("clone failed")
	ErrUnresolvableRevision = errors.New("revision cannot be resolved")
	ErrFileNotFoundInRemote = errors.New("file not found in remote")
	ErrCopyFailed           = errors.New("copy failed")
)

// FetchError reports a failed fetch together with the file it was for.
type FetchError struct {
	Op  string
	Ref config.FileRef
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Ref.ID(), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ResourceError is an environment failure around the scoped clone directory.
// It is a separate class from FetchError: the CLI aborts on it instead of
// reporting an ordinary failure.
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// IsResourceError reports whether err is or wraps a *ResourceError.
func IsResourceError(err error) bool {
	var re *ResourceError
	return errors.As(err, &re)
}
