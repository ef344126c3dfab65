package tracker

import (
	"errors"
	"fmt"
)

// Precondition failures.
var (
	ErrAlreadyExists  = errors.New("file already exists")
	ErrAlreadyTracked = errors.New("file is already tracked")
	ErrNotTracked     = errors.New("file is not tracked")
)

// PullError names the entry a bulk pull stopped at.
type PullError struct {
	LocalPath string
	Err       error
}

func (e *PullError) Error() string {
	return fmt.Sprintf("pulling %s: %v", e.LocalPath, e.Err)
}

func (e *PullError) Unwrap() error { return e.Err }
