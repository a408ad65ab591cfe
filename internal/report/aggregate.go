// Package report computes and renders the aggregate statistics of a normalized run.
package report

import (
	"cmp"
	"slices"

	"shipscan/internal/ingest"
	"shipscan/internal/models"
)

// PairCount is the number of shipments sharing a (first, second) key.
type PairCount struct {
	First  string
	Second string
	Count  int
}

// Mean is the average FOB value of one group.
type Mean struct {
	Key   string
	Mean  float64
	Count int
}

// Report bundles every aggregate printed after normalization.
type Report struct {
	Nulls        []ingest.NullCount
	CountryPairs []PairCount
	Routes       []PairCount
	AverageFOB   []Mean
	Countries    []string
}

// Build computes all aggregates.
func Build(nulls []ingest.NullCount, shipments []models.Shipment) *Report {
	return &Report{
		Nulls:        nulls,
		CountryPairs: CountryPairs(shipments),
		Routes:       Routes(shipments),
		AverageFOB:   AverageFOBByDestination(shipments),
		Countries:    Countries(shipments),
	}
}

// CountryPairs counts shipments per (source_country, destination_country), most frequent first.
func CountryPairs(shipments []models.Shipment) []PairCount {
	return countPairs(shipments, func(s models.Shipment) (string, string) {
		return s.SourceCountry, s.DestinationCountry
	})
}

// Routes counts shipments per (source_port, destination_port), most frequent first.
func Routes(shipments []models.Shipment) []PairCount {
	return countPairs(shipments, func(s models.Shipment) (string, string) {
		return s.SourcePort, s.DestinationPort
	})
}

// Groups with an empty key are left out, as a missing value has no group.
func countPairs(shipments []models.Shipment, key func(models.Shipment) (string, string)) []PairCount {
	counts := make(map[[2]string]int)

	for _, s := range shipments {
		a, b := key(s)
		if a == "" || b == "" {
			continue
		}

		counts[[2]string{a, b}]++
	}

	out := make([]PairCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, PairCount{First: k[0], Second: k[1], Count: n})
	}

	slices.SortFunc(out, func(x, y PairCount) int {
		return cmp.Or(
			cmp.Compare(y.Count, x.Count),
			cmp.Compare(x.First, y.First),
			cmp.Compare(x.Second, y.Second),
		)
	})

	return out
}

// AverageFOBByDestination averages value_fob_usd per destination country, highest first.
func AverageFOBByDestination(shipments []models.Shipment) []Mean {
	type acc struct {
		sum float64
		n   int
	}

	groups := make(map[string]*acc)

	for _, s := range shipments {
		if s.DestinationCountry == "" {
			continue
		}

		g, ok := groups[s.DestinationCountry]
		if !ok {
			g = &acc{}
			groups[s.DestinationCountry] = g
		}

		g.sum += s.ValueFOBUSD
		g.n++
	}

	out := make([]Mean, 0, len(groups))
	for k, g := range groups {
		out = append(out, Mean{Key: k, Mean: g.sum / float64(g.n), Count: g.n})
	}

	slices.SortFunc(out, func(x, y Mean) int {
		return cmp.Or(cmp.Compare(y.Mean, x.Mean), cmp.Compare(x.Key, y.Key))
	})

	return out
}

// Countries returns the distinct source and destination ISO values, sorted.
// The not-found sentinel is kept so that enrichment can report it.
func Countries(shipments []models.Shipment) []string {
	set := make(map[string]struct{})

	for _, s := range shipments {
		set[s.SourceISO] = struct{}{}
		set[s.DestinationISO] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for iso := range set {
		out = append(out, iso)
	}

	slices.Sort(out)

	return out
}
