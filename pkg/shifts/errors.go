package shifts

import "errors"

// Not found
var (
	ErrShiftNotFound     = errors.New("shift not found")
	ErrChallengeNotFound = errors.New("check-in challenge not found")
	ErrCarerKeyNotFound  = errors.New("carer key not registered")
)

// Authorization denied
var (
	ErrForbidden     = errors.New("account type not allowed for this operation")
	ErrNotShiftOwner = errors.New("not authorized for this shift's home")
	ErrNotShiftAgent = errors.New("not the agency bound to this shift")
)

// Invariant violations
var (
	ErrCapacityExceeded      = errors.New("number of users exceeds the shift count")
	ErrDuplicateAssignment   = errors.New("user is already assigned to this shift")
	ErrShiftAlreadyCompleted = errors.New("shift is already completed")
	ErrCarerNotLinked        = errors.New("some of the provided carer ids are not linked to the agency")
	ErrStaleShift            = errors.New("shift was modified concurrently")
	ErrChallengeConsumed     = errors.New("check-in challenge already used")
)

// Validation
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownShiftType = errors.New("shift type does not exist")
)
