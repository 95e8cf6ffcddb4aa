package corpus

import (
	"errors"
	"fmt"
)

// DataLoadError reports a missing, malformed or inconsistent source table.
// It is fatal for the session: no index is published after one.
type DataLoadError struct {
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data load: %s: %v", e.Reason, e.Err)
	}
	return "data load: " + e.Reason
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func loadErrorf(format string, args ...any) *DataLoadError {
	return &DataLoadError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a chapter, verse, page, root or word-form key
// that does not exist in the index.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// NotFound builds a NotFoundError for any printable key.
func NotFound(kind string, key any) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: fmt.Sprint(key)}
}

// OutOfRangeError reports a local verse number outside 1..Max.
type OutOfRangeError struct {
	Chapter int
	Verse   int
	Max     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("verse %d out of range for chapter %d (1..%d)", e.Verse, e.Chapter, e.Max)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsOutOfRange(err error) bool {
	var oor *OutOfRangeError
	return errors.As(err, &oor)
}

func IsDataLoad(err error) bool {
	var dl *DataLoadError
	return errors.As(err, &dl)
}
