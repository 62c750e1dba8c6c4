package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentifier is returned when a brand reference is not a well-formed key
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ErrSweepInProgress is returned when another sweep holds the run lock
var ErrSweepInProgress = errors.New("sweep already in progress")

// ErrBrandDeadlineExceeded is returned when a brand sync runs past its own deadline
var ErrBrandDeadlineExceeded = errors.New("brand sync deadline exceeded")

// ErrInvalidInput is returned when required fields are missing
var ErrInvalidInput = errors.New("invalid input")

// ErrAlreadyExists is returned by the store when a natural key is already taken
var ErrAlreadyExists = errors.New("already exists")

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// SourceUnreachableError is returned when a domain does not serve the storefront catalog
type SourceUnreachableError struct {
	Domain string
	Reason string
}

func (e *SourceUnreachableError) Error() string {
	return fmt.Sprintf("domain %s is not a reachable catalog source: %s", e.Domain, e.Reason)
}

// FetchError is returned when a catalog page request fails or returns a non-success status
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s failed: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExternalCapabilityError wraps failures of the social post-extraction service
type ExternalCapabilityError struct {
	Capability string
	Err        error
}

func (e *ExternalCapabilityError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Capability, e.Err)
}

func (e *ExternalCapabilityError) Unwrap() error {
	return e.Err
}
