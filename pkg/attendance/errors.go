package attendance

import "errors"

var (
	// ErrPhotoRequired is returned when a check-in or check-out carries no photo reference.
	ErrPhotoRequired = errors.New("photo required")
	// ErrNotCheckedIn is returned by CheckOut when the day has no check-in.
	ErrNotCheckedIn = errors.New("not checked in")
	// ErrForbidden is returned when the actor's role may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidJob is returned when a job entry lacks plate, type or description.
	ErrInvalidJob = errors.New("invalid job")
	// ErrInvalidRange is returned for unparsable or inverted report ranges.
	ErrInvalidRange = errors.New("invalid date range")
)
