package claim

import "errors"

var (
	ErrDateRequired     = errors.New("date is required")
	ErrInvalidDate      = errors.New("invalid date format, use YYYY-MM-DD")
	ErrUnknownActivity  = errors.New("unknown activity type")
	ErrCustomerRequired = errors.New("customer is required for this activity type")
	ErrWorkItemRequired = errors.New("work item is required for this activity type")
	ErrHoursRequired    = errors.New("hours is required")
	ErrInvalidHours     = errors.New("hours must be a valid number")
	ErrHoursOutOfRange  = errors.New("hours must be between 0 and 24")
)
