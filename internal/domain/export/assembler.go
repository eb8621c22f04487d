// Package export assembles persisted ledger records back into a report
// workbook: one sheet per truck classification, a totals row per sheet,
// and an optional summary sheet across all groups.
package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/payload"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
	"github.com/armadaops/truck-ledger/internal/domain/trucks"
)

// incomeHeader is the column layout of a truck income sheet.
var incomeHeader = []string{
	"Tanggal", "Muatan", "Qty", "Harga Satuan", "Bruto",
	"Uang Muat", "Uang Pasar", "Uang Calo", "Total Potongan", "Netto",
}

// plainHeader is the layout of the unclassified sheet.
var plainHeader = []string{"Tanggal", "Kategori", "Keterangan", "Nominal"}

// Assembler builds report workbooks. Zero value is not usable; create
// with NewAssembler.
type Assembler struct {
	classifier *trucks.TextClassifier

	// Title prefixes every sheet's title band, e.g. "LAPORAN MEI 2024".
	Title string
	// Summary adds a cross-group summary sheet at the end.
	Summary bool
}

func NewAssembler() *Assembler {
	return &Assembler{classifier: trucks.NewTextClassifier()}
}

// group collects the records of one classification in input order.
type group struct {
	truck   trucks.Truck
	records []transactions.Record
}

// groupTotals accumulates the totals row of one income group.
type groupTotals struct {
	quantity   int64
	gross      decimal.Decimal
	fees       map[string]decimal.Decimal
	deductions decimal.Decimal
	net        decimal.Decimal
}

// Assemble groups records by truck classification and renders one sheet
// per non-empty group, in table order, unclassified last. Row order
// within a group follows the input order.
func (a *Assembler) Assemble(records []transactions.Record) *grid.Workbook {
	groups := make(map[string]*group)
	for _, t := range trucks.Table {
		groups[t.Key] = &group{truck: t}
	}
	unclassified := &group{truck: trucks.Unclassified()}

	for _, rec := range records {
		g := unclassified
		if truck, ok := a.classifier.Classify(rec.Category); ok {
			g = groups[truck.Key]
		}
		g.records = append(g.records, rec)
	}

	wb := &grid.Workbook{}
	for _, t := range trucks.Table {
		g := groups[t.Key]
		if len(g.records) == 0 {
			continue
		}
		wb.Sheets = append(wb.Sheets, a.incomeSheet(g))
	}
	if len(unclassified.records) > 0 {
		wb.Sheets = append(wb.Sheets, a.plainSheet(unclassified))
	}
	if a.Summary {
		wb.Sheets = append(wb.Sheets, a.summarySheet(groups, unclassified))
	}
	return wb
}

func (a *Assembler) titleRow(label string, width int) (grid.Row, grid.Merge) {
	title := strings.ToUpper(strings.TrimSpace(strings.Join([]string{a.Title, label}, " ")))
	row := make(grid.Row, width)
	row[0] = grid.Text(title)
	for i := 1; i < width; i++ {
		row[i] = grid.Empty()
	}
	return row, grid.Merge{FirstRow: 0, FirstCol: 0, LastRow: 0, LastCol: width - 1}
}

func headerRow(labels []string) grid.Row {
	row := make(grid.Row, len(labels))
	for i, l := range labels {
		row[i] = grid.Text(l)
	}
	return row
}

func (a *Assembler) incomeSheet(g *group) grid.Sheet {
	width := len(incomeHeader)
	title, merge := a.titleRow(g.truck.Label, width)
	sheet := grid.Sheet{
		Name:   g.truck.Label,
		Rows:   []grid.Row{title, headerRow(incomeHeader)},
		Merges: []grid.Merge{merge},
	}

	totals := groupTotals{
		gross:      decimal.Zero,
		fees:       map[string]decimal.Decimal{},
		deductions: decimal.Zero,
		net:        decimal.Zero,
	}

	for _, rec := range g.records {
		p := payload.DecodeIncome(rec.Description)
		if p == nil {
			// Legacy free-text record inside an income group: show what we
			// have, count only the amount into the net column.
			row := make(grid.Row, width)
			row[0] = grid.Date(rec.TransDate)
			row[1] = grid.Text(rec.Description)
			row[width-1] = amountCell(rec.Amount)
			sheet.Rows = append(sheet.Rows, row)
			totals.net = totals.net.Add(rec.Amount)
			continue
		}

		qty := int64(p.Quantity)
		loading := feeTotal(p, payload.DeductionLoading)
		market := feeTotal(p, payload.DeductionMarket)
		broker := feeTotal(p, payload.DeductionBroker)

		sheet.Rows = append(sheet.Rows, grid.Row{
			grid.Date(rec.TransDate),
			grid.Text(p.ProductLabel),
			grid.Number(float64(qty)),
			amountCell(p.UnitPrice),
			amountCell(p.Gross),
			amountCell(loading),
			amountCell(market),
			amountCell(broker),
			amountCell(p.DeductionTotal),
			amountCell(p.Net),
		})

		totals.quantity += qty
		totals.gross = totals.gross.Add(p.Gross)
		totals.fees[payload.DeductionLoading] = totals.fees[payload.DeductionLoading].Add(loading)
		totals.fees[payload.DeductionMarket] = totals.fees[payload.DeductionMarket].Add(market)
		totals.fees[payload.DeductionBroker] = totals.fees[payload.DeductionBroker].Add(broker)
		totals.deductions = totals.deductions.Add(p.DeductionTotal)
		totals.net = totals.net.Add(p.Net)
	}

	sheet.Rows = append(sheet.Rows, grid.Row{
		grid.Text("TOTAL"),
		grid.Empty(),
		grid.Number(float64(totals.quantity)),
		grid.Empty(),
		amountCell(totals.gross),
		amountCell(totals.fees[payload.DeductionLoading]),
		amountCell(totals.fees[payload.DeductionMarket]),
		amountCell(totals.fees[payload.DeductionBroker]),
		amountCell(totals.deductions),
		amountCell(totals.net),
	})
	return sheet
}

func (a *Assembler) plainSheet(g *group) grid.Sheet {
	width := len(plainHeader)
	title, merge := a.titleRow(g.truck.Label, width)
	sheet := grid.Sheet{
		Name:   g.truck.Label,
		Rows:   []grid.Row{title, headerRow(plainHeader)},
		Merges: []grid.Merge{merge},
	}

	total := decimal.Zero
	for _, rec := range g.records {
		sheet.Rows = append(sheet.Rows, grid.Row{
			grid.Date(rec.TransDate),
			grid.Text(rec.Category),
			grid.Text(rec.Description),
			amountCell(rec.Amount),
		})
		total = total.Add(rec.Amount)
	}

	sheet.Rows = append(sheet.Rows, grid.Row{
		grid.Text("TOTAL"), grid.Empty(), grid.Empty(), amountCell(total),
	})
	return sheet
}

// summarySheet aggregates every emitted group's net into one overview.
func (a *Assembler) summarySheet(groups map[string]*group, unclassified *group) grid.Sheet {
	width := 2
	title, merge := a.titleRow("Ringkasan", width)
	sheet := grid.Sheet{
		Name:   "Ringkasan",
		Rows:   []grid.Row{title, headerRow([]string{"Kelompok", "Netto"})},
		Merges: []grid.Merge{merge},
	}

	grand := decimal.Zero
	add := func(g *group) {
		if len(g.records) == 0 {
			return
		}
		sum := decimal.Zero
		for _, rec := range g.records {
			if p := payload.DecodeIncome(rec.Description); p != nil {
				sum = sum.Add(p.Net)
				continue
			}
			sum = sum.Add(rec.Amount)
		}
		sheet.Rows = append(sheet.Rows, grid.Row{grid.Text(g.truck.Label), amountCell(sum)})
		grand = grand.Add(sum)
	}
	for _, t := range trucks.Table {
		add(groups[t.Key])
	}
	add(unclassified)

	sheet.Rows = append(sheet.Rows, grid.Row{grid.Text("TOTAL"), amountCell(grand)})
	return sheet
}

// feeTotal is the row-level deduction amount: per-load rate times loads.
// A missing key means "not applicable" and contributes zero to the sheet.
func feeTotal(p *payload.Income, key string) decimal.Decimal {
	rate, ok := p.PerLoadDeductions[key]
	if !ok {
		return decimal.Zero
	}
	return rate.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func amountCell(d decimal.Decimal) grid.Cell {
	f, _ := d.Float64()
	return grid.Number(f)
}
