// Package trucks classifies sheet names and free-text categories to the
// known truck types. The tag table is ordered data consumed by a generic
// matcher, so the heuristic stays auditable and testable on its own.
package trucks

import (
	"strings"
)

// Truck is one classification entry: a stable key, a display label, and
// the normalized name patterns that map to it.
type Truck struct {
	Key      string
	Label    string
	Patterns []string
}

// Table is the ordered classification table. First matching pattern wins,
// so more specific patterns come before shorter ones.
var Table = []Truck{
	{Key: "coltdiesel", Label: "Colt Diesel", Patterns: []string{"COLTDIESEL", "COLT"}},
	{Key: "tronton", Label: "Tronton", Patterns: []string{"TRONTON"}},
	{Key: "fuso", Label: "Fuso", Patterns: []string{"FUSO"}},
	{Key: "trailer", Label: "Trailer", Patterns: []string{"TRAILER"}},
	{Key: "engkel", Label: "Engkel", Patterns: []string{"ENGKEL"}},
	{Key: "pickup", Label: "Pick Up", Patterns: []string{"PICKUP", "PICK-UP"}},
}

// UnclassifiedKey and UnclassifiedLabel name the fallback bucket used by
// the export assembler for records matching no truck.
const (
	UnclassifiedKey   = "lainlain"
	UnclassifiedLabel = "Lain-lain"
)

// Unclassified returns the fallback bucket entry.
func Unclassified() Truck {
	return Truck{Key: UnclassifiedKey, Label: UnclassifiedLabel}
}

// Normalize uppercases a name and strips all whitespace, so "COLT DIESEL",
// "coltdiesel" and " Colt Diesel " classify identically.
func Normalize(name string) string {
	upper := strings.ToUpper(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ' ':
			return -1
		}
		return r
	}, upper)
}

// ClassifySheetName maps a sheet name to a truck via the tag table.
// Sheets matching no pattern are not importable in the template flow.
func ClassifySheetName(name string) (Truck, bool) {
	norm := Normalize(name)
	if norm == "" {
		return Truck{}, false
	}
	for _, t := range Table {
		for _, p := range t.Patterns {
			if strings.Contains(norm, p) {
				return t, true
			}
		}
	}
	return Truck{}, false
}

// ByKey returns the table entry for a classification key.
func ByKey(key string) (Truck, bool) {
	for _, t := range Table {
		if t.Key == key {
			return t, true
		}
	}
	return Truck{}, false
}
