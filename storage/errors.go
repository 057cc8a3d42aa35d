package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnableToWriteFile is returned when a file cannot be written
	ErrUnableToWriteFile = errors.New("unable to write file")
	// ErrUnableToReadFile is returned when a file cannot be read
	ErrUnableToReadFile = errors.New("unable to read file")
	// ErrUnableToDeleteFile is returned when a file cannot be deleted
	ErrUnableToDeleteFile = errors.New("unable to delete file")
	// ErrUnableToDeleteDirectory is returned when a directory cannot be deleted
	ErrUnableToDeleteDirectory = errors.New("unable to delete directory")
	// ErrUnableToCreateDirectory is returned when a directory cannot be created
	ErrUnableToCreateDirectory = errors.New("unable to create directory")
	// ErrUnableToSetVisibility is returned when permissions cannot be changed
	ErrUnableToSetVisibility = errors.New("unable to set visibility")
	// ErrUnableToRetrieveMetadata is returned when an attribute cannot be fetched
	ErrUnableToRetrieveMetadata = errors.New("unable to retrieve metadata")
	// ErrUnableToMoveFile is returned when a file cannot be moved
	ErrUnableToMoveFile = errors.New("unable to move file")
	// ErrUnableToCopyFile is returned when a file cannot be copied
	ErrUnableToCopyFile = errors.New("unable to copy file")
	// ErrUnableToCheckExistence is returned when existence cannot be determined
	ErrUnableToCheckExistence = errors.New("unable to check existence")
	// ErrSymbolicLinkEncountered is returned when a listing meets a symlink
	// and links are disallowed
	ErrSymbolicLinkEncountered = errors.New("symbolic link encountered")
	// ErrPathTraversal is returned when a path escapes the storage root
	ErrPathTraversal = errors.New("path traversal detected")
	// ErrUnknownDisk is returned when a disk name has no configuration
	ErrUnknownDisk = errors.New("disk is not configured")
	// ErrUnknownDriver is returned when a disk references an unregistered driver
	ErrUnknownDriver = errors.New("driver is not supported")
)

// OperationError records a failed storage operation, the location it was
// performed on and the underlying cause.
type OperationError struct {
	Kind     error
	Location string
	Reason   string
	Err      error
}

// NewOperationError builds an OperationError of the given kind
func NewOperationError(kind error, location string, err error) *OperationError {
	e := &OperationError{Kind: kind, Location: location, Err: err}
	if err != nil {
		e.Reason = err.Error()
	}
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%v at location: %s", e.Kind, e.Location)
	if e.Reason != "" {
		msg += ". " + e.Reason
	}
	return msg
}

// Unwrap exposes both the operation kind and the underlying cause, so
// errors.Is matches either.
func (e *OperationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
