package errors

import "fmt"

// AppError is a business error carrying a stable numeric code alongside a
// human-readable message and, optionally, the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, error=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common errors
var (
	ErrTokenInvalid     = New(ErrUnauthorized, "invalid token")
	ErrSessionNotFound  = New(ErrUnauthorized, "session does not exist or has expired")
	ErrPermissionDenied = New(ErrForbidden, "insufficient permissions")
	ErrResourceNotFound = New(ErrNotFound, "the requested resource does not exist")
)

// Generation pipeline errors (spec §4.8, §7). Only the Impossible kind
// surfaces to the end user with actionable detail; the rest map to a
// generic "could not generate plan, please retry" message at the handler
// boundary (see handler.PlannerHandler.GetGenerationStatus).
var (
	ErrMacroOracleUnavailable    = New(ErrMacroDerivationFailed, "macro target oracle could not return valid numbers")
	ErrEmptyCandidatePool        = New(ErrNoViableRecipes, "no recipes satisfy the dietary restrictions")
	ErrAllTiersFailed            = New(ErrGenerationUnavailable, "could not generate plan, please retry")
	ErrCanceledByClient          = New(ErrGenerationCanceled, "generation request was canceled")
	ErrGenerationRequestNotFound = New(ErrPlanNotFound, "generation request not found")
	ErrDuplicateRequestID        = New(ErrRequestConflict, "a generation request with this id is already in progress")
)

// NewImpossible builds the one error kind that carries a user-facing,
// actionable reason (spec §4.3).
func NewImpossible(reason string) *AppError {
	return New(ErrImpossibleGoals, "plan is impossible: "+reason)
}
