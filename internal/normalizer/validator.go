package normalizer

import (
	"strings"

	"shipscan/internal/models"
)

// Validator decides which raw rows belong to the commodity under study.
type Validator struct {
	rules Rules
}

// NewValidator creates a validator for the given rules.
func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// Accept reports whether the row's hs_code text has the configured length and prefix.
// Rows that fail are dropped without an error.
func (v *Validator) Accept(row models.RawShipment) bool {
	if !row.HSCode.Valid {
		return false
	}

	code := row.HSCode.Value

	return len(code) == v.rules.HSCodeLength && strings.HasPrefix(code, v.rules.HSCodePrefix)
}

// CheckInvariants verifies that a normalized shipment satisfies the output rules.
func (v *Validator) CheckInvariants(s models.Shipment) error {
	code := formatInt(s.HSCode)
	if len(code) != v.rules.HSCodeLength || !strings.HasPrefix(code, v.rules.HSCodePrefix) {
		return &FieldError{Line: s.Line, Field: "hs_code", Value: code, Err: ErrInvariant}
	}

	if v.rules.ItemsPolicy == PolicyOverride && s.ValueFOBUSD < v.rules.ItemsThreshold && s.ItemsNumber != 1 {
		return &FieldError{Line: s.Line, Field: "items_number", Value: formatInt(s.ItemsNumber), Err: ErrInvariant}
	}

	if s.SourceCheck != strings.HasPrefix(s.SourcePort, s.SourceISO) {
		return &FieldError{Line: s.Line, Field: "source_check", Value: s.SourcePort, Err: ErrInvariant}
	}

	if s.DestinationCheck != strings.HasPrefix(s.DestinationPort, s.DestinationISO) {
		return &FieldError{Line: s.Line, Field: "destination_check", Value: s.DestinationPort, Err: ErrInvariant}
	}

	return nil
}
