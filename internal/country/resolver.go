// Package country resolves free-text country names to ISO 3166-1 alpha-2 codes.
//
// A lookup has three outcomes. A known name yields Found. An unknown name
// yields NotFound, which callers record as data using the sentinel from
// Result.Code. A failing backend yields an error, which is never folded
// into NotFound.
package country

import (
	"context"
	"errors"
	"strings"

	"github.com/biter777/countries"
	"golang.org/x/text/unicode/norm"

	"shipscan/internal/models"
)

// ErrLookupFailed marks a resolver failure that is not a plain "unknown name".
var ErrLookupFailed = errors.New("country lookup failed")

// Result is the outcome of resolving one name.
type Result struct {
	code  string
	found bool
}

// Found returns a resolved result.
func Found(code string) Result {
	return Result{code: code, found: true}
}

// NotFound returns an unresolved result.
func NotFound() Result {
	return Result{}
}

// IsFound reports whether the name was resolved.
func (r Result) IsFound() bool {
	return r.found
}

// Code returns the alpha-2 code, or models.CountryNotFound.
func (r Result) Code() string {
	if !r.found {
		return models.CountryNotFound
	}

	return r.code
}

// Resolver maps a country name to a Result.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Result, error)
}

// Normalize applies NFC and collapses whitespace.
func Normalize(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// DatabaseResolver looks names up in the bundled ISO 3166 table.
type DatabaseResolver struct{}

// NewDatabaseResolver creates a resolver backed by github.com/biter777/countries.
func NewDatabaseResolver() *DatabaseResolver {
	return &DatabaseResolver{}
}

// Resolve implements Resolver.
func (d *DatabaseResolver) Resolve(ctx context.Context, name string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	name = Normalize(name)
	if name == "" {
		return NotFound(), nil
	}

	c := countries.ByName(name)
	if c == countries.Unknown || !c.IsValid() {
		return NotFound(), nil
	}

	code := c.Alpha2()
	if len(code) != 2 {
		return NotFound(), nil
	}

	return Found(code), nil
}

// StaticResolver resolves from a fixed name-to-code table. Matching ignores case.
type StaticResolver struct {
	codes map[string]string
}

// NewStaticResolver builds a resolver from name -> code pairs.
func NewStaticResolver(table map[string]string) *StaticResolver {
	codes := make(map[string]string, len(table))
	for name, code := range table {
		codes[foldKey(name)] = strings.ToUpper(code)
	}

	return &StaticResolver{codes: codes}
}

// Resolve implements Resolver.
func (s *StaticResolver) Resolve(ctx context.Context, name string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if code, ok := s.codes[foldKey(name)]; ok {
		return Found(code), nil
	}

	return NotFound(), nil
}

func foldKey(name string) string {
	return strings.ToLower(Normalize(name))
}

// Chain tries each resolver in order and returns the first Found.
// An error from any resolver stops the chain.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, name string) (Result, error) {
	for _, r := range c {
		res, err := r.Resolve(ctx, name)
		if err != nil {
			return Result{}, err
		}

		if res.IsFound() {
			return res, nil
		}
	}

	return NotFound(), nil
}
