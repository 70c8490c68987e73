package domain

import "errors"

type ErrorCode string

const (
	ErrorCodeTeamExists       ErrorCode = "TEAM_EXISTS"
	ErrorCodeWorkItemExists   ErrorCode = "WORK_ITEM_EXISTS"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeNoCandidate      ErrorCode = "NO_CANDIDATE"
	ErrorCodeCapacityConflict ErrorCode = "CAPACITY_CONFLICT"
	ErrorCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrorCodeValidation       ErrorCode = "VALIDATION"
)

type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
