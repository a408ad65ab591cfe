// Package models defines data structures shared by the ingest, normalizer and report stages.
package models

import "time"

// CountryNotFound is the ISO value recorded for a country name the resolver does not know.
const CountryNotFound = "Country not found!"

// Nullable is a CSV cell that may be absent in the source.
type Nullable struct {
	Value string
	Valid bool
}

// Some returns a present cell.
func Some(v string) Nullable {
	return Nullable{Value: v, Valid: true}
}

// Null returns an absent cell.
func Null() Nullable {
	return Nullable{}
}

// String returns the cell text, or "" when absent.
func (n Nullable) String() string {
	if !n.Valid {
		return ""
	}

	return n.Value
}

// RawShipment is one row of the trades file before normalization.
type RawShipment struct {
	Date               Nullable
	HSCode             Nullable
	ShipperName        Nullable
	StdUnit            Nullable
	StdQuantity        Nullable
	ValueFOBUSD        Nullable
	ItemsNumber        Nullable
	SourceCountry      Nullable
	DestinationCountry Nullable
	SourcePort         Nullable
	DestinationPort    Nullable
	Line               int
}

// Shipment is a normalized row with the derived ISO codes and port checks.
type Shipment struct {
	Date               time.Time `json:"date"`
	ShipperName        string    `json:"shipperName"`
	StdUnit            string    `json:"stdUnit"`
	SourceCountry      string    `json:"sourceCountry"`
	DestinationCountry string    `json:"destinationCountry"`
	SourcePort         string    `json:"sourcePort"`
	DestinationPort    string    `json:"destinationPort"`
	SourceISO          string    `json:"sourceIso"`
	DestinationISO     string    `json:"destinationIso"`
	HSCode             int64     `json:"hsCode"`
	StdQuantity        int64     `json:"stdQuantity"`
	ItemsNumber        int64     `json:"itemsNumber"`
	ValueFOBUSD        float64   `json:"valueFobUsd"`
	Line               int       `json:"line"`
	SourceCheck        bool      `json:"sourceCheck"`
	DestinationCheck   bool      `json:"destinationCheck"`
}
