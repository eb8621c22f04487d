// Package money provides rupiah-safe financial helpers on top of
// shopspring/decimal and go-money. All transaction amounts in the system
// are IDR decimals with two fractional digits.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyIDR is the ISO-4217 code for the Indonesian rupiah.
const CurrencyIDR = "IDR"

// RoundAmount normalizes a decimal to the two fractional digits every
// persisted amount carries.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundRupiah rounds to the nearest whole rupiah. Per-load deduction rates
// are stored at this granularity.
func RoundRupiah(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// PerLoadRate divides an aggregate fee by the load count and rounds to the
// nearest whole rupiah. A non-positive quantity yields zero; callers omit
// the deduction key entirely in that case.
func PerLoadRate(total decimal.Decimal, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return RoundRupiah(total.Div(decimal.NewFromInt(int64(quantity))))
}

// FromDecimal converts a decimal rupiah amount to a go-money value in
// minor units.
func FromDecimal(d decimal.Decimal) *money.Money {
	cents := d.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return money.New(cents, CurrencyIDR)
}

// FormatRupiah renders an amount for display, e.g. "Rp1.100.000,00".
func FormatRupiah(d decimal.Decimal) string {
	return FromDecimal(d).Display()
}
