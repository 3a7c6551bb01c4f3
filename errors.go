package datafilter

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAlgorithm indicates that New/Apply was called with a name missing from the registry.
	ErrUnknownAlgorithm = errors.New("datafilter: unknown algorithm")

	// ErrInvalidOption indicates a recognized option with a bad type, range or content.
	ErrInvalidOption = errors.New("datafilter: invalid option")

	// ErrInvalidInput indicates malformed codec-specific input data.
	ErrInvalidInput = errors.New("datafilter: invalid input")

	// ErrIO indicates that a sink failed to accept output, or an input source failed to read.
	ErrIO = errors.New("datafilter: i/o error")

	// ErrUseAfterFinish indicates input or finalization after the engine has been finished.
	ErrUseAfterFinish = errors.New("datafilter: output has been finalized")

	// ErrNoResult indicates Result was called on an engine whose output goes to a sink.
	ErrNoResult = errors.New("datafilter: output sent elsewhere, not available as a result")

	// ErrStalled indicates a transform that consumed nothing from a full staging buffer.
	// It is always a bug in the transform.
	ErrStalled = errors.New("datafilter: transform made no progress on a full buffer")

	// ErrDuplicateAlgorithm is returned by Register when the name is already taken.
	ErrDuplicateAlgorithm = errors.New("datafilter: algorithm already registered")
)

// OptionError describes a rejected codec option.
type OptionError struct {
	Algorithm string
	Key       string
	Reason    string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("datafilter: %s: bad value for '%s' option, %s", e.Algorithm, e.Key, e.Reason)
}

func (e *OptionError) Unwrap() error {
	return ErrInvalidOption
}

// InputError describes malformed input found by a transform.
type InputError struct {
	Algorithm string
	Offset    int64 // absolute offset into the input stream
	Reason    string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("datafilter: %s: %s (at input offset %d)", e.Algorithm, e.Reason, e.Offset)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// invalid is returned by transforms; the engine fills in the algorithm and absolute offset.
func invalid(reason string) error {
	return &InputError{Reason: reason}
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
