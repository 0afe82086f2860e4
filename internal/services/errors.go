package services

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is the user-facing validation error for an entity
	// whose name must be unique (case-sensitive), raised before any slug
	// work is attempted.
	ErrDuplicateName = errors.New("an entry with this name already exists")

	// ErrDuplicateEmail is raised on registration with a taken email.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidCredentials is raised on failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyApplied is raised when a user applies to a job twice.
	ErrAlreadyApplied = errors.New("already applied to this job")
)
