// Package normalizer validates and normalizes raw trade shipments.
package normalizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shipscan/internal/config"
	"shipscan/internal/country"
	"shipscan/internal/ingest"
	"shipscan/internal/logger"
	"shipscan/internal/models"
)

// Items number policies below the value threshold.
const (
	PolicyOverride = config.ItemsPolicyOverride
	PolicyFill     = config.ItemsPolicyFill
)

// Rules are the business rules of the pipeline.
type Rules struct {
	HSCodePrefix   string
	ItemsPolicy    string
	DateLayouts    []string
	HSCodeLength   int
	ItemsThreshold float64
}

// DefaultRules returns the rules of the default configuration.
func DefaultRules() Rules {
	return RulesFromConfig(config.Default().Validation)
}

// RulesFromConfig maps the validation section of the config to Rules.
func RulesFromConfig(v config.ValidationConfig) Rules {
	return Rules{
		HSCodePrefix:   v.HSCodePrefix,
		HSCodeLength:   v.HSCodeLength,
		ItemsThreshold: v.ItemsThreshold,
		ItemsPolicy:    v.ItemsPolicy,
		DateLayouts:    v.DateLayouts,
	}
}

// Stats summarizes one run.
type Stats struct {
	Read                  int
	Kept                  int
	Dropped               int
	ItemsDefaulted        int
	UnresolvedCountries   int
	SourceMismatches      int
	DestinationMismatches int
}

// Result is the normalized dataset.
type Result struct {
	Shipments []models.Shipment
	Stats     Stats
}

// Processor runs the validation and normalization steps over a dataset.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	log         *logger.Logger
}

// NewProcessor creates a new processor instance. A nil log discards output.
func NewProcessor(rules Rules, resolver country.Resolver, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}

	return &Processor{
		validator:   NewValidator(rules),
		transformer: NewTransformer(rules, resolver),
		log:         log,
	}
}

// Process normalizes ds. The first fatal error aborts the run and no partial result is returned.
func (p *Processor) Process(ctx context.Context, ds *ingest.Dataset) (*Result, error) {
	// 1. Dates are parsed for every row, before filtering.
	dates := make([]time.Time, len(ds.Rows))
	for i, row := range ds.Rows {
		d, err := p.transformer.ParseDate(row)
		if err != nil {
			return nil, fmt.Errorf("normalization failed: %w", err)
		}

		dates[i] = d
	}

	res := &Result{Stats: Stats{Read: len(ds.Rows)}}

	for i, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 2. Filter on hs_code.
		if !p.validator.Accept(row) {
			res.Stats.Dropped++
			p.log.Debug("row dropped by hs_code filter", "line", row.Line, "hs_code", row.HSCode.String())

			continue
		}

		// 3-8. Coerce, default, resolve, check.
		s, defaulted, err := p.transformer.Transform(ctx, row, dates[i])
		if err != nil {
			return nil, fmt.Errorf("normalization failed: %w", err)
		}

		if err := p.validator.CheckInvariants(s); err != nil {
			return nil, fmt.Errorf("normalization failed: %w", err)
		}

		p.count(&res.Stats, s, defaulted)
		res.Shipments = append(res.Shipments, s)
	}

	res.Stats.Kept = len(res.Shipments)

	level := slog.LevelInfo
	if res.Stats.UnresolvedCountries > 0 {
		level = slog.LevelWarn
	}

	p.log.Log(ctx, level, "normalization complete",
		"read", res.Stats.Read,
		"kept", res.Stats.Kept,
		"dropped", res.Stats.Dropped,
		"items_defaulted", res.Stats.ItemsDefaulted,
		"unresolved_countries", res.Stats.UnresolvedCountries,
	)

	return res, nil
}

func (p *Processor) count(st *Stats, s models.Shipment, defaulted bool) {
	if defaulted {
		st.ItemsDefaulted++
	}

	for _, iso := range []string{s.SourceISO, s.DestinationISO} {
		if iso == models.CountryNotFound {
			st.UnresolvedCountries++
		}
	}

	if !s.SourceCheck {
		st.SourceMismatches++
	}

	if !s.DestinationCheck {
		st.DestinationMismatches++
	}
}
