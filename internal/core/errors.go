package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat means the file is neither CSV nor a spreadsheet.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMalformedInput means the decoder could not read or tokenize the file.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptyBatch means the file decoded to zero data rows.
	ErrEmptyBatch = errors.New("no data found in file")

	// ErrCommitFailed matches every *CommitError.
	ErrCommitFailed = errors.New("import commit failed")

	// ErrFileTooLarge is returned when a staged upload exceeds its limit.
	ErrFileTooLarge = errors.New("file too large")
)

// RowError lists every validation failure of one input row.
type RowError struct {
	Row      int      `json:"row"`
	Messages []string `json:"messages"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, strings.Join(e.Messages, ", "))
}

// CommitError is a failed transaction. Op names the statement that failed.
// Nothing from the batch is visible after a CommitError.
type CommitError struct {
	Op  string
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCommitFailed, e.Op, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCommitFailed) true.
func (e *CommitError) Is(target error) bool {
	return target == ErrCommitFailed
}
