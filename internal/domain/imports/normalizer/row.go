package normalizer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/imports/sniffer"
	"github.com/armadaops/truck-ledger/internal/domain/payload"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
	"github.com/armadaops/truck-ledger/internal/domain/trucks"
	"github.com/armadaops/truck-ledger/pkg/money"
)

// Candidate is one normalized row. Invalid candidates stay in the
// preview for the user to inspect but are excluded from commit.
type Candidate struct {
	Record transactions.Record
	Valid  bool
	RowNum int // 0-based row index in the source sheet
	Sheet  string
}

// SheetNormalizer turns the data rows of one sheet into candidates.
// Truck is only consulted in the template flow, where every row of a
// sheet belongs to the truck the sheet name classified to.
type SheetNormalizer struct {
	Flow    sniffer.Flow
	Mapping sniffer.ColumnMapping
	Truck   trucks.Truck
}

// feeFields pairs fee columns with their payload deduction keys.
var feeFields = []struct {
	field sniffer.Field
	key   string
}{
	{sniffer.FieldLoadingFee, payload.DeductionLoading},
	{sniffer.FieldMarketFee, payload.DeductionMarket},
	{sniffer.FieldBrokerFee, payload.DeductionBroker},
}

// Normalize processes every row after headerIdx. Rows that omit a
// repeated date inherit the last date seen in the sheet (fill-down for
// continuation rows under the same day).
func (n *SheetNormalizer) Normalize(sheet *grid.Sheet, headerIdx int) []Candidate {
	var candidates []Candidate
	var date time.Time
	var haveDate bool

	for i := headerIdx + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if rowEmpty(row) {
			continue
		}

		if d, ok := NormalizeDate(row.Cell(n.Mapping.Col(sniffer.FieldDate))); ok {
			date, haveDate = d, true
		}

		var c Candidate
		if n.Flow == sniffer.FlowTemplate {
			c = n.templateRow(row, date, haveDate)
		} else {
			c = n.genericRow(row, date, haveDate)
		}
		c.RowNum = i
		c.Sheet = sheet.Name
		candidates = append(candidates, c)
	}
	return candidates
}

func (n *SheetNormalizer) templateRow(row grid.Row, date time.Time, haveDate bool) Candidate {
	qty := NormalizeQuantity(row.Cell(n.Mapping.Col(sniffer.FieldQuantity)))
	product := strings.TrimSpace(row.Cell(n.Mapping.Col(sniffer.FieldProductName)).String())

	unitPrice := NormalizeAmount(row.Cell(n.Mapping.Col(sniffer.FieldUnitPrice)))
	if unitPrice.IsZero() && qty > 0 {
		// Some sheets only carry the gross column; back out the unit price.
		gross := NormalizeAmount(row.Cell(n.Mapping.Col(sniffer.FieldGrossTotal)))
		if !gross.IsZero() {
			unitPrice = money.RoundAmount(gross.Div(decimal.NewFromInt(int64(qty))))
		}
	}

	p := payload.Income{
		ProductKey:   productKey(product),
		ProductLabel: product,
		TruckKey:     n.Truck.Key,
		TruckLabel:   n.Truck.Label,
		Quantity:     qty,
		UnitPrice:    unitPrice,
		Notes:        strings.TrimSpace(row.Cell(n.Mapping.Col(sniffer.FieldDescription)).String()),
	}

	if qty > 0 {
		for _, f := range feeFields {
			col := n.Mapping.Col(f.field)
			if col < 0 {
				continue
			}
			cell := row.Cell(col)
			if cell.IsEmpty() {
				continue
			}
			rate := money.PerLoadRate(NormalizeAmount(cell), qty)
			if p.PerLoadDeductions == nil {
				p.PerLoadDeductions = map[string]decimal.Decimal{}
			}
			p.PerLoadDeductions[f.key] = rate
		}
	}
	payload.ComputeTotals(&p)

	// Deductions larger than the gross would produce a negative net;
	// such rows are kept in the preview but never commit.
	valid := haveDate && qty > 0 && product != "" && !p.Net.IsNegative()
	rec := transactions.Record{
		TransDate: date,
		Category:  n.Truck.Label,
		Amount:    money.RoundAmount(p.Net),
	}
	if encoded, err := payload.Encode(p); err == nil {
		rec.Description = encoded
	} else {
		valid = false
	}
	return Candidate{Record: rec, Valid: valid}
}

func (n *SheetNormalizer) genericRow(row grid.Row, date time.Time, haveDate bool) Candidate {
	amount := money.RoundAmount(NormalizeAmount(row.Cell(n.Mapping.Col(sniffer.FieldAmount))))
	rec := transactions.Record{
		TransDate:   date,
		Category:    strings.TrimSpace(row.Cell(n.Mapping.Col(sniffer.FieldCategory)).String()),
		Description: strings.TrimSpace(row.Cell(n.Mapping.Col(sniffer.FieldDescription)).String()),
		Amount:      amount,
	}
	return Candidate{Record: rec, Valid: haveDate && amount.IsPositive()}
}

func rowEmpty(row grid.Row) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// productKey slugs a product label for stable grouping across imports.
func productKey(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	return strings.Join(strings.Fields(lower), "-")
}
