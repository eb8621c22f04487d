package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
)

// NormalizeAmount resolves a cell to a decimal amount. Anything
// unparseable yields zero; the validity predicate is what rejects bad
// rows, not this function.
func NormalizeAmount(cell grid.Cell) decimal.Decimal {
	switch cell.Kind {
	case grid.CellNumber:
		return decimal.NewFromFloat(cell.Number)
	case grid.CellText:
		return ParseAmountString(cell.Text)
	default:
		return decimal.Zero
	}
}

// ParseAmountString parses an Indonesian-formatted amount string such as
// "Rp 1.100.000" or "1.250.000,50". Dots are thousands separators and the
// comma is the decimal mark.
func ParseAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		case r == '-' && b.Len() == 0:
			negative = true
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "." {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

// NormalizeQuantity resolves a cell to an integer load count.
// Non-numeric values yield zero.
func NormalizeQuantity(cell grid.Cell) int {
	switch cell.Kind {
	case grid.CellNumber:
		return int(cell.Number)
	case grid.CellText:
		d := ParseAmountString(cell.Text)
		return int(d.IntPart())
	default:
		return 0
	}
}
