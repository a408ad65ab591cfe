package normalizer

import (
	"errors"
	"fmt"

	"shipscan/pkg/utils"
)

// maxErrorValue bounds how much of an offending cell is echoed in errors.
const maxErrorValue = 40

// Fatal normalization errors. Any of them aborts the whole batch.
var (
	// ErrParseDate is a date cell no configured layout accepts.
	ErrParseDate = errors.New("unparseable date")
	// ErrParseValue is a value_fob_usd cell that is not a finite number.
	ErrParseValue = errors.New("unparseable value_fob_usd")
	// ErrCoercion is a numeric cell that is null or not an integer.
	ErrCoercion = errors.New("integer coercion failed")
	// ErrMissingItemsCount is a null items_number at or above the value threshold.
	ErrMissingItemsCount = errors.New("items_number required at or above value threshold")
	// ErrInvariant is a normalized record that breaks an output rule.
	ErrInvariant = errors.New("output invariant violated")
)

// FieldError locates a fatal error in the input.
type FieldError struct {
	Err   error
	Field string
	Value string
	Line  int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Field, utils.NewStringHelper().TruncateString(e.Value, maxErrorValue), e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
