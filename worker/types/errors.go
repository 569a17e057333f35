package types

import (
	"errors"
	"fmt"
	"strings"

	"git.sr.ht/~rjarry/sumview/models"
)

var (
	// ErrStoreUnavailable is wrapped by stores when a call cannot run at
	// all (filesystem gone, connection down).
	ErrStoreUnavailable = errors.New("message store unavailable")
	ErrBatchFailed      = errors.New("batch operation failed")
	ErrInconsistentTree = errors.New("inconsistent message tree")
	ErrBusy             = errors.New("message list is busy")
	ErrSameFolder       = errors.New("destination is the current folder")
	ErrNoTrash          = errors.New("no trash folder")
	ErrNoFolder         = errors.New("no such folder")
)

type BatchOp int

const (
	OpMove BatchOp = iota
	OpCopy
	OpDelete
)

func (op BatchOp) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpCopy:
		return "copy"
	}
	return "delete"
}

// BatchError reports one failed store call of a commit cycle.
type BatchError struct {
	Op   BatchOp
	Dest *models.Folder
	Uids []models.UID
	Err  error
}

func (e *BatchError) Error() string {
	if e.Dest != nil {
		return fmt.Sprintf("%s of %d message(s) to %s: %v",
			e.Op, len(e.Uids), e.Dest.Path, e.Err)
	}
	return fmt.Sprintf("%s of %d message(s): %v", e.Op, len(e.Uids), e.Err)
}

func (e *BatchError) Unwrap() []error {
	return []error{ErrBatchFailed, e.Err}
}

// PartialCommitError aggregates the failed batches of a commit cycle. The
// batches that succeeded stay applied.
type PartialCommitError struct {
	Errors []*BatchError
}

func (e *PartialCommitError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("some operations failed: %s", strings.Join(msgs, "; "))
}

func (e *PartialCommitError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}
