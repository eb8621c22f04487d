// Package csvio reads flat CSV ledgers for the generic import flow.
// Rows funnel through the same normalizer as spreadsheet rows so both
// sources share fill-down and validity behavior.
package csvio

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/imports/normalizer"
	"github.com/armadaops/truck-ledger/internal/domain/imports/sniffer"
)

// ledgerRow is the expected CSV shape. Header matching is
// case-insensitive.
type ledgerRow struct {
	Tanggal    string `csv:"tanggal"`
	Kategori   string `csv:"kategori"`
	Keterangan string `csv:"keterangan"`
	Nominal    string `csv:"nominal"`
}

func init() {
	gocsv.SetHeaderNormalizer(func(h string) string {
		return strings.ToLower(strings.TrimSpace(h))
	})
}

// mapping pins the synthetic sheet layout built from the CSV columns.
var mapping = sniffer.ColumnMapping{
	sniffer.FieldDate:        0,
	sniffer.FieldCategory:    1,
	sniffer.FieldDescription: 2,
	sniffer.FieldAmount:      3,
}

// Read parses a CSV ledger into generic-flow candidates.
func Read(r io.Reader) ([]normalizer.Candidate, error) {
	var rows []ledgerRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	sheet := &grid.Sheet{
		Name: "csv",
		Rows: make([]grid.Row, 0, len(rows)+1),
	}
	// Synthetic header row so the normalizer skips index 0.
	sheet.Rows = append(sheet.Rows, grid.Row{
		grid.Text("tanggal"), grid.Text("kategori"), grid.Text("keterangan"), grid.Text("nominal"),
	})
	for _, row := range rows {
		sheet.Rows = append(sheet.Rows, grid.Row{
			grid.Text(strings.TrimSpace(row.Tanggal)),
			grid.Text(strings.TrimSpace(row.Kategori)),
			grid.Text(strings.TrimSpace(row.Keterangan)),
			grid.Text(strings.TrimSpace(row.Nominal)),
		})
	}

	n := &normalizer.SheetNormalizer{Flow: sniffer.FlowGeneric, Mapping: mapping}
	return n.Normalize(sheet, 0), nil
}
