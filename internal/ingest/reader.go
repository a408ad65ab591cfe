// Package ingest reads the delimited trades file into raw shipment rows.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"shipscan/internal/models"
)

// Canonical column names.
const (
	ColDate               = "date"
	ColHSCode             = "hs_code"
	ColShipperName        = "shipper_name"
	ColStdUnit            = "std_unit"
	ColStdQuantity        = "std_quantity"
	ColValueFOBUSD        = "value_fob_usd"
	ColItemsNumber        = "items_number"
	ColSourceCountry      = "source_country"
	ColDestinationCountry = "destination_country"
	ColSourcePort         = "source_port"
	ColDestinationPort    = "destination_port"
)

// RequiredColumns lists every column a trades file must carry.
var RequiredColumns = []string{
	ColDate,
	ColHSCode,
	ColShipperName,
	ColStdUnit,
	ColStdQuantity,
	ColValueFOBUSD,
	ColItemsNumber,
	ColSourceCountry,
	ColDestinationCountry,
	ColSourcePort,
	ColDestinationPort,
}

// Ingest errors.
var (
	ErrEmptyFile      = errors.New("input has no header row")
	ErrMissingColumn  = errors.New("required column missing")
	ErrDuplicateCol   = errors.New("duplicate column")
	ErrFieldCount     = errors.New("wrong number of fields")
	ErrInvalidOptions = errors.New("invalid reader options")
)

// Options controls how the file is parsed.
type Options struct {
	// HeaderAliases maps a normalized header name to its canonical name.
	HeaderAliases map[string]string
	NullTokens    []string
	Delimiter     rune
}

// DefaultOptions matches the trades export format.
func DefaultOptions() Options {
	return Options{
		Delimiter: ';',
		HeaderAliases: map[string]string{
			"destination_country,": ColDestinationCountry,
		},
		NullTokens: []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "None", "<NA>", "#N/A"},
	}
}

// Dataset is the parsed file. Header keeps the file's column order after normalization.
type Dataset struct {
	Header []string
	Rows   []models.RawShipment
	// Nulls counts absent cells per canonical column, including extra columns.
	Nulls map[string]int
}

// Reader parses trades files.
type Reader struct {
	aliases map[string]string
	nulls   map[string]struct{}
	delim   rune
}

// NewReader creates a reader with the given options.
func NewReader(opts Options) (*Reader, error) {
	if opts.Delimiter == 0 || opts.Delimiter == utf8.RuneError || opts.Delimiter == '"' || opts.Delimiter == '\n' {
		return nil, fmt.Errorf("%w: delimiter %q", ErrInvalidOptions, opts.Delimiter)
	}

	r := &Reader{
		aliases: make(map[string]string, len(opts.HeaderAliases)),
		nulls:   make(map[string]struct{}, len(opts.NullTokens)),
		delim:   opts.Delimiter,
	}

	for k, v := range opts.HeaderAliases {
		r.aliases[normalizeHeader(k)] = normalizeHeader(v)
	}

	for _, tok := range opts.NullTokens {
		r.nulls[tok] = struct{}{}
	}

	return r, nil
}

// ReadFile opens path and parses it.
func (r *Reader) ReadFile(ctx context.Context, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	defer f.Close()

	return r.Read(ctx, f)
}

// Read parses a delimited stream with a header row.
func (r *Reader) Read(ctx context.Context, in io.Reader) (*Dataset, error) {
	cr := csv.NewReader(in)
	cr.Comma = r.delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rawHeader, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header, index, err := r.mapHeader(rawHeader)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Header: header,
		Nulls:  make(map[string]int, len(header)),
	}
	for _, h := range header {
		ds.Nulls[h] = 0
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := cr.FieldPos(0)

		if len(record) != len(header) {
			return nil, fmt.Errorf("%w at line %d: got %d, want %d", ErrFieldCount, line, len(record), len(header))
		}

		cells := make([]models.Nullable, len(record))
		for i, v := range record {
			cells[i] = r.cell(v)
			if !cells[i].Valid {
				ds.Nulls[header[i]]++
			}
		}

		ds.Rows = append(ds.Rows, buildRow(cells, index, line))
	}

	return ds, nil
}

func (r *Reader) cell(v string) models.Nullable {
	v = strings.TrimSpace(v)
	if _, isNull := r.nulls[v]; isNull {
		return models.Null()
	}

	return models.Some(v)
}

func (r *Reader) mapHeader(raw []string) ([]string, map[string]int, error) {
	header := make([]string, len(raw))
	index := make(map[string]int, len(raw))

	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}

		name := normalizeHeader(h)

		if canonical, ok := r.aliases[name]; ok {
			name = canonical
		}

		if _, dup := index[name]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateCol, name)
		}

		header[i] = name
		index[name] = i
	}

	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	return header, index, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func buildRow(cells []models.Nullable, index map[string]int, line int) models.RawShipment {
	get := func(col string) models.Nullable {
		return cells[index[col]]
	}

	return models.RawShipment{
		Date:               get(ColDate),
		HSCode:             get(ColHSCode),
		ShipperName:        get(ColShipperName),
		StdUnit:            get(ColStdUnit),
		StdQuantity:        get(ColStdQuantity),
		ValueFOBUSD:        get(ColValueFOBUSD),
		ItemsNumber:        get(ColItemsNumber),
		SourceCountry:      get(ColSourceCountry),
		DestinationCountry: get(ColDestinationCountry),
		SourcePort:         get(ColSourcePort),
		DestinationPort:    get(ColDestinationPort),
		Line:               line,
	}
}

// NullCount is the number of absent cells in one column.
type NullCount struct {
	Column string
	Count  int
}

// NullCounts returns the per-column null counts in header order.
func NullCounts(ds *Dataset) []NullCount {
	out := make([]NullCount, 0, len(ds.Header))
	for _, h := range ds.Header {
		out = append(out, NullCount{Column: h, Count: ds.Nulls[h]})
	}

	return out
}
