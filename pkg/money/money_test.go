package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, "1250000.56", RoundAmount(dec("1250000.555")).String())
	assert.Equal(t, "100", RoundAmount(dec("100")).String())
}

func TestRoundRupiah(t *testing.T) {
	assert.Equal(t, "20001", RoundRupiah(dec("20000.5")).String())
	assert.Equal(t, "20000", RoundRupiah(dec("20000.4")).String())
}

func TestPerLoadRate(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		quantity int
		want     string
	}{
		{"even division", "300000", 15, "20000"},
		{"rounds to whole rupiah", "100000", 3, "33333"},
		{"rounds up", "100000", 6, "16667"},
		{"zero quantity", "300000", 0, "0"},
		{"negative quantity", "300000", -2, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerLoadRate(dec(tt.total), tt.quantity)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestFromDecimal(t *testing.T) {
	m := FromDecimal(dec("1250000.50"))
	assert.Equal(t, int64(125000050), m.Amount())
	assert.Equal(t, CurrencyIDR, m.Currency().Code)
}

func TestFormatRupiah(t *testing.T) {
	out := FormatRupiah(dec("1100000"))
	assert.Contains(t, out, "Rp")
	assert.Contains(t, out, "1.100.000")
}
