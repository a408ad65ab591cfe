package report

import (
	"fmt"
	"io"
	"strconv"

	"shipscan/internal/formatter"
)

// NullTable lists null counts per column.
func (r *Report) NullTable() formatter.Table {
	t := formatter.Table{
		Header: []string{"column", "nulls"},
		Align:  []formatter.Alignment{formatter.AlignLeft, formatter.AlignRight},
	}

	for _, n := range r.Nulls {
		t.Rows = append(t.Rows, []string{n.Column, strconv.Itoa(n.Count)})
	}

	return t
}

// CountryPairsTable lists the most popular shipping countries.
func (r *Report) CountryPairsTable() formatter.Table {
	return pairTable("source_country", "destination_country", r.CountryPairs)
}

// RoutesTable lists the most popular shipping routes.
func (r *Report) RoutesTable() formatter.Table {
	return pairTable("source_port", "destination_port", r.Routes)
}

// AverageFOBTable lists the average import value per destination country.
func (r *Report) AverageFOBTable() formatter.Table {
	t := formatter.Table{
		Header: []string{"destination_country", "avg_value_fob_usd", "shipments"},
		Align:  []formatter.Alignment{formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight},
	}

	for _, m := range r.AverageFOB {
		t.Rows = append(t.Rows, []string{m.Key, strconv.FormatFloat(m.Mean, 'f', 2, 64), strconv.Itoa(m.Count)})
	}

	return t
}

func pairTable(first, second string, pairs []PairCount) formatter.Table {
	t := formatter.Table{
		Header: []string{first, second, "count"},
		Align:  []formatter.Alignment{formatter.AlignLeft, formatter.AlignLeft, formatter.AlignRight},
	}

	for _, p := range pairs {
		t.Rows = append(t.Rows, []string{p.First, p.Second, strconv.Itoa(p.Count)})
	}

	return t
}

// WriteText prints every section of the report.
func (r *Report) WriteText(w io.Writer) error {
	sections := []struct {
		title string
		table formatter.Table
	}{
		{"Count of NULL/NaN values in each column:", r.NullTable()},
		{"Most popular shipping countries:", r.CountryPairsTable()},
		{"Most popular shipping routes:", r.RoutesTable()},
		{"Average import value per country:", r.AverageFOBTable()},
	}

	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if err := formatter.Render(w, s.title, s.table); err != nil {
			return fmt.Errorf("failed to render %q: %w", s.title, err)
		}
	}

	return nil
}
