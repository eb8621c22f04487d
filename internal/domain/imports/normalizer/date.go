// Package normalizer converts raw worksheet rows into candidate ledger
// records: date and amount parsing, fill-down of repeated dates, and the
// row validity predicate.
package normalizer

import (
	"strings"
	"time"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
)

// serialEpoch is the day-zero of spreadsheet date serials. The off-by-two
// against 1900-01-01 absorbs the historical leap-year bug in that format.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order. ISO first, then the day-first forms the
// ledgers actually use.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2-1-2006",
	"02.01.2006",
	"2/1/06",
	"2-1-06",
	"2 January 2006",
}

// indonesianMonths maps month names seen in hand-written ledgers to the
// English names the time package can parse.
var indonesianMonths = map[string]string{
	"januari":   "January",
	"februari":  "February",
	"maret":     "March",
	"april":     "April",
	"mei":       "May",
	"juni":      "June",
	"juli":      "July",
	"agustus":   "August",
	"september": "September",
	"oktober":   "October",
	"november":  "November",
	"desember":  "December",
}

// NormalizeDate resolves a cell to a civil date. The bool is false when
// the cell holds nothing date-like; callers treat that as a missing
// value, never as an error.
func NormalizeDate(cell grid.Cell) (time.Time, bool) {
	switch cell.Kind {
	case grid.CellDate:
		return cell.Date, true
	case grid.CellNumber:
		return serialToDate(cell.Number)
	case grid.CellText:
		return ParseDateString(cell.Text)
	default:
		return time.Time{}, false
	}
}

// serialToDate converts a spreadsheet day-serial. Serials below 1 or
// absurdly far in the future are rejected rather than mapped.
func serialToDate(serial float64) (time.Time, bool) {
	days := int(serial)
	if days < 1 || days > 200000 {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, days), true
}

// ParseDateString tries each accepted layout against the trimmed text,
// translating Indonesian month names first.
func ParseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	lower := strings.ToLower(s)
	for id, en := range indonesianMonths {
		if strings.Contains(lower, id) {
			s = replaceFold(s, id, en)
			break
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// replaceFold replaces the first case-insensitive occurrence of old in s.
func replaceFold(s, old, new string) string {
	idx := strings.Index(strings.ToLower(s), old)
	if idx < 0 {
		return s
	}
	return s[:idx] + new + s[idx+len(old):]
}
