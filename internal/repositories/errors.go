package repositories

import "fmt"

// repoError is the shared RepositoryError implementation used by the
// in-memory stores.
type repoError struct {
	msg         string
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repoError) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *repoError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func (e *repoError) IsNotFound() bool    { return e != nil && e.notFound }
func (e *repoError) IsConflict() bool    { return e != nil && e.conflict }
func (e *repoError) IsUnavailable() bool { return e != nil && e.unavailable }

// NotFoundError builds a RepositoryError classified as not-found.
func NotFoundError(msg string) RepositoryError {
	return &repoError{msg: msg, notFound: true}
}

// ConflictError builds a RepositoryError classified as a conflict.
func ConflictError(msg string) RepositoryError {
	return &repoError{msg: msg, conflict: true}
}

// UnavailableError builds a RepositoryError classified as unavailable.
func UnavailableError(msg string, err error) RepositoryError {
	return &repoError{msg: msg, err: err, unavailable: true}
}
