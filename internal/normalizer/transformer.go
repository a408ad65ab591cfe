package normalizer

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"shipscan/internal/country"
	"shipscan/internal/models"
)

// Transformer coerces accepted rows into typed shipments.
type Transformer struct {
	resolver country.Resolver
	rules    Rules
}

// NewTransformer creates a transformer that resolves countries with resolver.
func NewTransformer(rules Rules, resolver country.Resolver) *Transformer {
	return &Transformer{rules: rules, resolver: resolver}
}

// ParseDate parses the date cell with the first layout that accepts it.
func (t *Transformer) ParseDate(row models.RawShipment) (time.Time, error) {
	if row.Date.Valid {
		for _, layout := range t.rules.DateLayouts {
			if d, err := time.Parse(layout, row.Date.Value); err == nil {
				return d, nil
			}
		}
	}

	return time.Time{}, &FieldError{Line: row.Line, Field: "date", Value: row.Date.String(), Err: ErrParseDate}
}

// Transform builds a Shipment from an accepted row. date is the already parsed date cell.
// defaulted reports whether items_number was set by the threshold rule.
func (t *Transformer) Transform(ctx context.Context, row models.RawShipment, date time.Time) (s models.Shipment, defaulted bool, err error) {
	s = models.Shipment{
		Date:               date,
		ShipperName:        row.ShipperName.String(),
		StdUnit:            row.StdUnit.String(),
		SourceCountry:      row.SourceCountry.String(),
		DestinationCountry: row.DestinationCountry.String(),
		SourcePort:         row.SourcePort.String(),
		DestinationPort:    row.DestinationPort.String(),
		Line:               row.Line,
	}

	if s.HSCode, err = coerceInt(row, "hs_code", row.HSCode); err != nil {
		return s, false, err
	}

	if s.StdQuantity, err = coerceInt(row, "std_quantity", row.StdQuantity); err != nil {
		return s, false, err
	}

	if s.ValueFOBUSD, err = ParseDecimalComma(row.ValueFOBUSD); err != nil {
		return s, false, &FieldError{Line: row.Line, Field: "value_fob_usd", Value: row.ValueFOBUSD.String(), Err: err}
	}

	if s.ItemsNumber, defaulted, err = t.itemsNumber(row, s.ValueFOBUSD); err != nil {
		return s, false, err
	}

	if s.SourceISO, err = t.resolve(ctx, row, "source_country", s.SourceCountry); err != nil {
		return s, false, err
	}

	if s.DestinationISO, err = t.resolve(ctx, row, "destination_country", s.DestinationCountry); err != nil {
		return s, false, err
	}

	// The sentinel never prefixes a port code, so unresolved countries read as false.
	s.SourceCheck = strings.HasPrefix(s.SourcePort, s.SourceISO)
	s.DestinationCheck = strings.HasPrefix(s.DestinationPort, s.DestinationISO)

	return s, defaulted, nil
}

// itemsNumber applies the two-branch threshold rule.
func (t *Transformer) itemsNumber(row models.RawShipment, value float64) (int64, bool, error) {
	if value < t.rules.ItemsThreshold {
		if t.rules.ItemsPolicy == PolicyOverride || !row.ItemsNumber.Valid {
			return 1, true, nil
		}

		n, err := coerceInt(row, "items_number", row.ItemsNumber)

		return n, false, err
	}

	if !row.ItemsNumber.Valid {
		return 0, false, &FieldError{Line: row.Line, Field: "items_number", Err: ErrMissingItemsCount}
	}

	n, err := coerceInt(row, "items_number", row.ItemsNumber)

	return n, false, err
}

func (t *Transformer) resolve(ctx context.Context, row models.RawShipment, field, name string) (string, error) {
	res, err := t.resolver.Resolve(ctx, name)
	if err != nil {
		return "", &FieldError{Line: row.Line, Field: field, Value: name, Err: fmt.Errorf("%w: %w", country.ErrLookupFailed, err)}
	}

	return res.Code(), nil
}

// ParseDecimalComma parses a monetary cell written with a decimal comma.
//
// Every comma becomes a point before parsing, with no thousands-separator
// handling. A cell such as "80,000.00" or "1.234,56" therefore turns into
// a string with two points and is rejected as ErrParseValue rather than
// guessed at. Null, NaN and infinite values are rejected too.
func ParseDecimalComma(cell models.Nullable) (float64, error) {
	if !cell.Valid {
		return 0, ErrParseValue
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(cell.Value, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrParseValue
	}

	return f, nil
}

// coerceInt parses an int64 cell. Integral float text such as "3.0" is accepted.
func coerceInt(row models.RawShipment, field string, cell models.Nullable) (int64, error) {
	fail := func() (int64, error) {
		return 0, &FieldError{Line: row.Line, Field: field, Value: cell.String(), Err: ErrCoercion}
	}

	if !cell.Valid {
		return fail()
	}

	if n, err := strconv.ParseInt(cell.Value, 10, 64); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(cell.Value, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return fail()
	}

	return int64(f), nil
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
