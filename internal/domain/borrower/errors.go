package borrower

import "errors"

var (
	ErrUserIDRequired      = errors.New("user_id_required")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrBorrowerExists      = errors.New("borrower_already_exists")
	ErrDuplicateNationalID = errors.New("duplicate_national_id")
	ErrBorrowerNotFound    = errors.New("borrower_not_found")
	ErrActiveLoans         = errors.New("borrower_has_active_loans")
	ErrInvalidScoreInput   = errors.New("invalid_score_input")
	ErrEmptyUpdate         = errors.New("empty_update")
)

// ValidationError reports a malformed query or input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
