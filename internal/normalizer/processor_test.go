package normalizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shipscan/internal/ingest"
	"shipscan/internal/models"
)

const sampleCSV = `date;hs_code;shipper_name;std_unit;std_quantity;value_fob_usd;items_number;source_country;destination_country,;source_port;destination_port
2023-01-05;84716000;ACME MOTORS;UNITS;1;1200,00;3;China;Mexico;CNSHA;MXVER
2023-01-06;87042310;ACME MOTORS;UNITS;1;45000,50;;United States;Mexico;USNYC;MXVER
2023-01-07;87042390;TRUCKS LTD;UNITS;4;95000,00;4;China;Chile;CNSHA;CLVAP
`

func readDataset(t *testing.T, text string) *ingest.Dataset {
	t.Helper()

	r, err := ingest.NewReader(ingest.DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	ds, err := r.Read(context.Background(), strings.NewReader(text))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	return ds
}

func TestNewProcessor(t *testing.T) {
	if p := NewProcessor(DefaultRules(), testResolver(), nil); p == nil {
		t.Fatal("NewProcessor returned nil")
	}
}

func TestProcessor_Process_EndToEnd(t *testing.T) {
	p := NewProcessor(DefaultRules(), testResolver(), nil)

	res, err := p.Process(context.Background(), readDataset(t, sampleCSV))
	if err != nil {
		t.Fatalf("Process returned unexpected error: %v", err)
	}

	if len(res.Shipments) != 2 {
		t.Fatalf("expected 2 shipments, got %d", len(res.Shipments))
	}

	below, above := res.Shipments[0], res.Shipments[1]

	if below.Line != 3 || below.ItemsNumber != 1 {
		t.Errorf("below-threshold row: line %d items %d, want line 3 items 1", below.Line, below.ItemsNumber)
	}

	if above.Line != 4 || above.ItemsNumber != 4 {
		t.Errorf("above-threshold row: line %d items %d, want line 4 items 4", above.Line, above.ItemsNumber)
	}

	for _, s := range res.Shipments {
		code := formatInt(s.HSCode)
		if len(code) != 8 || !strings.HasPrefix(code, "870423") {
			t.Errorf("retained hs_code %s breaks the filter", code)
		}
	}

	want := Stats{Read: 3, Kept: 2, Dropped: 1, ItemsDefaulted: 1}
	if res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}
}

func TestProcessor_Process_UnresolvedCountry(t *testing.T) {
	p := NewProcessor(DefaultRules(), testResolver(), nil)

	text := strings.Replace(sampleCSV, "United States;Mexico", "Atlantis;Mexico", 1)

	res, err := p.Process(context.Background(), readDataset(t, text))
	if err != nil {
		t.Fatalf("Process returned unexpected error: %v", err)
	}

	s := res.Shipments[0]
	if s.SourceISO != models.CountryNotFound || s.SourceCheck {
		t.Errorf("SourceISO = %q, SourceCheck = %v", s.SourceISO, s.SourceCheck)
	}

	if res.Stats.UnresolvedCountries != 1 || res.Stats.SourceMismatches != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestProcessor_Process_FatalErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
		want error
	}{
		{
			// Dates are parsed before the hs_code filter runs.
			name: "bad date on a dropped row",
			edit: func(s string) string { return strings.Replace(s, "2023-01-05;84716000", "someday;84716000", 1) },
			want: ErrParseDate,
		},
		{
			name: "thousands separator",
			edit: func(s string) string { return strings.Replace(s, "95000,00", "95,000.00", 1) },
			want: ErrParseValue,
		},
		{
			name: "missing items above threshold",
			edit: func(s string) string { return strings.Replace(s, "95000,00;4;", "95000,00;;", 1) },
			want: ErrMissingItemsCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(DefaultRules(), testResolver(), nil)

			res, err := p.Process(context.Background(), readDataset(t, tt.edit(sampleCSV)))
			if !errors.Is(err, tt.want) {
				t.Errorf("Process error = %v, want %v", err, tt.want)
			}

			if res != nil {
				t.Error("Process expected nil result on fatal error")
			}
		})
	}
}

func TestProcessor_Process_ResolverFailure(t *testing.T) {
	p := NewProcessor(DefaultRules(), failingResolver{}, nil)

	_, err := p.Process(context.Background(), readDataset(t, sampleCSV))
	if !errors.Is(err, errResolverDown) {
		t.Errorf("Process error = %v, want resolver failure", err)
	}
}

func TestProcessor_Process_DoesNotMutateInput(t *testing.T) {
	ds := readDataset(t, sampleCSV)
	before := ds.Rows[1]

	if _, err := NewProcessor(DefaultRules(), testResolver(), nil).Process(context.Background(), ds); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if ds.Rows[1] != before {
		t.Error("Process mutated its input")
	}
}
