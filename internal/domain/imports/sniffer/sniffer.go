// Package sniffer locates header rows in ledger worksheets and maps
// header cells to logical fields. Workbooks exported by bookkeepers
// rarely start at A1, so the header row is hunted heuristically.
package sniffer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
)

// Field names a logical column of a ledger sheet.
type Field string

const (
	FieldDate        Field = "date"
	FieldCategory    Field = "category"
	FieldProductName Field = "productName"
	FieldQuantity    Field = "quantity"
	FieldUnitPrice   Field = "unitPrice"
	FieldGrossTotal  Field = "grossTotal"
	FieldLoadingFee  Field = "loadingFee"
	FieldMarketFee   Field = "marketFee"
	FieldBrokerFee   Field = "brokerFee"
	FieldNetTotal    Field = "netTotal"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
)

// Flow selects which shape of ledger a sheet is read as.
type Flow string

const (
	// FlowTemplate is the haulage template with per-load quantities and fees.
	FlowTemplate Flow = "template"
	// FlowGeneric is a flat date/category/amount ledger.
	FlowGeneric Flow = "generic"
)

// ColumnMapping maps fields to 0-based column indices. Absent fields
// report -1, matching unresolved columns everywhere downstream.
type ColumnMapping map[Field]int

// Col returns the column for a field, -1 when unmapped.
func (m ColumnMapping) Col(f Field) int {
	if c, ok := m[f]; ok {
		return c
	}
	return -1
}

// Set assigns a column to a field. Negative columns clear the field.
func (m ColumnMapping) Set(f Field, col int) {
	if col < 0 {
		delete(m, f)
		return
	}
	m[f] = col
}

// Resolved reports whether a field has a usable column.
func (m ColumnMapping) Resolved(f Field) bool {
	return m.Col(f) >= 0
}

// rule matches one field against header text. Keywords are matched as
// substrings of the normalized header; Exclude vetoes a match so that
// "total harga" does not bind unitPrice through "harga".
type rule struct {
	Field    Field
	Keywords []string
	Exclude  []string
}

// Rule order matters: more specific fields bind before generic ones so a
// header like "total harga" is consumed by grossTotal first.
var rules = []rule{
	{Field: FieldDate, Keywords: []string{"tanggal", "tgl", "date"}},
	{Field: FieldGrossTotal, Keywords: []string{"bruto", "gross", "total harga"}},
	{Field: FieldNetTotal, Keywords: []string{"netto", "bersih", "net", "setoran"}},
	{Field: FieldLoadingFee, Keywords: []string{"muat", "loading", "kuli"}, Exclude: []string{"muatan"}},
	{Field: FieldMarketFee, Keywords: []string{"pasar", "market", "retribusi"}},
	{Field: FieldBrokerFee, Keywords: []string{"calo", "broker", "perantara"}},
	{Field: FieldQuantity, Keywords: []string{"qty", "jumlah", "rit", "kuantitas"}},
	{Field: FieldProductName, Keywords: []string{"muatan", "barang", "produk"}},
	{Field: FieldUnitPrice, Keywords: []string{"harga", "price"}, Exclude: []string{"total", "bruto"}},
	{Field: FieldCategory, Keywords: []string{"kategori", "jenis"}},
	{Field: FieldDescription, Keywords: []string{"keterangan", "deskripsi", "catatan"}},
	{Field: FieldAmount, Keywords: []string{"nominal", "amount", "nilai", "rp"}},
}

// headerSearchRows bounds how deep into a sheet the header hunt goes.
// Title bands and blank padding never exceed this in practice.
const headerSearchRows = 15

var ErrNoHeaderRow = errors.New("no header row found")

// normalizeHeader lowercases and collapses whitespace so keyword
// matching is layout-insensitive.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func matchRule(r rule, header string) bool {
	for _, ex := range r.Exclude {
		if strings.Contains(header, ex) {
			return false
		}
	}
	for _, kw := range r.Keywords {
		if strings.Contains(header, kw) {
			return true
		}
	}
	return false
}

// LocateHeaderRow scans the first rows of a sheet for the row that looks
// like a ledger header: it must name a date column and a quantity or
// amount column. Returns the 0-based row index.
func LocateHeaderRow(sheet *grid.Sheet) (int, error) {
	limit := len(sheet.Rows)
	if limit > headerSearchRows {
		limit = headerSearchRows
	}
	for i := 0; i < limit; i++ {
		m := MapColumns(sheet.Rows[i])
		if !m.Resolved(FieldDate) {
			continue
		}
		if m.Resolved(FieldQuantity) || m.Resolved(FieldAmount) {
			return i, nil
		}
	}
	return 0, ErrNoHeaderRow
}

// MapColumns matches every cell of a header row against the rule table.
// First match wins per field; a cell binds at most one field.
func MapColumns(header grid.Row) ColumnMapping {
	m := ColumnMapping{}
	for col := range header {
		cell := header.Cell(col)
		if cell.Kind == grid.CellEmpty {
			continue
		}
		text := normalizeHeader(cell.String())
		if text == "" {
			continue
		}
		for _, r := range rules {
			if m.Resolved(r.Field) {
				continue
			}
			if matchRule(r, text) {
				m.Set(r.Field, col)
				break
			}
		}
	}
	return m
}

// Merge overlays manual column choices on an auto-detected mapping.
// Manual entries always win, including explicit clears.
func Merge(auto, manual ColumnMapping) ColumnMapping {
	merged := ColumnMapping{}
	for f, c := range auto {
		merged[f] = c
	}
	for f, c := range manual {
		merged.Set(f, c)
	}
	return merged
}

// MissingFieldsError reports the mandatory fields a mapping lacks for a
// given flow. Fields are sorted for stable messages.
type MissingFieldsError struct {
	Flow   Flow
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s mapping missing required columns: %s", e.Flow, strings.Join(names, ", "))
}

func mandatoryFields(flow Flow) []Field {
	if flow == FlowTemplate {
		return []Field{FieldDate, FieldQuantity, FieldProductName}
	}
	return []Field{FieldDate, FieldCategory, FieldAmount}
}

// Validate checks a mapping against the mandatory fields of a flow.
func Validate(m ColumnMapping, flow Flow) error {
	var missing []Field
	for _, f := range mandatoryFields(flow) {
		if !m.Resolved(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return &MissingFieldsError{Flow: flow, Fields: missing}
}
