package workflow

import "errors"

// The error taxonomy callers branch on. All expected business conditions
// come back as these values (or wrap them); "deny" is never conflated with
// "unknown".
var (
	// ErrUnauthorized means the actor is not the request's next approver and
	// does not hold the required role for the current level.
	ErrUnauthorized = errors.New("actor is not authorized to act at this level")

	// ErrInvalidTransition means the operation was attempted on a terminal or
	// mismatched state. Terminal requests are immutable; the attempt is
	// reported, never silently ignored.
	ErrInvalidTransition = errors.New("request is not in a state that accepts this transition")

	// ErrValidationFailed covers malformed input: unknown request type,
	// missing rejection reason.
	ErrValidationFailed = errors.New("validation failed")

	// ErrStaleState means the snapshot handed in has since been advanced in
	// the store. The caller should re-fetch and retry.
	ErrStaleState = errors.New("request state is stale, re-fetch and retry")

	// ErrNoEligibleApprover means a role-selector level currently has no
	// employee holding the role. The request stays pending, it is never
	// treated as approved.
	ErrNoEligibleApprover = errors.New("no eligible approver for current level")

	// ErrDirectoryUnavailable means the employee/role directory call failed.
	// Collaborator failure propagates; it is never a default allow.
	ErrDirectoryUnavailable = errors.New("employee directory unavailable")
)
