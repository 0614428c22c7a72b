package engine

import "fmt"

// Validation error codes.
const (
	CodeUtilizationOutOfRange = "UTILIZATION_OUT_OF_RANGE"
	CodeNegativeRate          = "NEGATIVE_RATE"
	CodeNegativeAllocation    = "NEGATIVE_ALLOCATION"
	CodeTargetMarginInvalid   = "TARGET_MARGIN_INVALID"
)

// Undefined-result codes. An undefined result is not a numeric zero; callers
// render it as absent.
const (
	CodeRevenueUndefined        = "REVENUE_UNDEFINED"
	CodeMarginUndefined         = "MARGIN_UNDEFINED"
	CodeSprintCapacityUndefined = "SPRINT_CAPACITY_UNDEFINED"
)

// ValidationError rejects bad input before any state change.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErr(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// UndefinedResultError marks a result that has no defined value for the given
// inputs, as opposed to a computed zero.
type UndefinedResultError struct {
	Code string
}

func (e *UndefinedResultError) Error() string {
	return e.Code
}

func undefinedErr(code string) *UndefinedResultError {
	return &UndefinedResultError{Code: code}
}
