package scheduler

import "errors"

// Sentinel errors for the failure taxonomy. Callers classify wrapped errors
// with errors.Is.
var (
	// ErrInvalidRequest marks a malformed duration or ambiguous target,
	// rejected before any state mutation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAlreadyRestricted marks a guard claim conflict: the target already
	// has an active restriction of the same kind family.
	ErrAlreadyRestricted = errors.New("target already restricted")

	// ErrPlatformDenied marks a platform refusal, typically a missing bot
	// permission. Recoverable on revert, fatal on apply.
	ErrPlatformDenied = errors.New("platform denied")

	// ErrStoreUnavailable marks a failed durable write. Registration fails
	// outright rather than leaving an un-revertable restriction.
	ErrStoreUnavailable = errors.New("action store unavailable")

	// ErrNotFound marks a target that no longer exists on the platform.
	ErrNotFound = errors.New("target not found")

	// ErrNotReady is returned by Register before startup replay completes.
	ErrNotReady = errors.New("scheduler not accepting registrations")
)
