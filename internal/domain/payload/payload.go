// Package payload encodes and decodes the structured financial breakdown
// carried inside a transaction's description field. The payload is a tagged
// JSON object; the discriminator lets future shapes coexist with the
// current one, and anything without a known tag is treated as free text.
package payload

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// TypeIncomeV1 is the discriminator for the income breakdown payload.
const TypeIncomeV1 = "income-v1"

// Deduction keys applicable per load. Only keys that actually apply are
// stored; a missing key means "not applicable", never "zero fee".
const (
	DeductionLoading = "loading"
	DeductionMarket  = "market"
	DeductionBroker  = "broker"
)

// DeductionKeys lists the known per-load deduction names in report order.
var DeductionKeys = []string{DeductionLoading, DeductionMarket, DeductionBroker}

// Income is the structured breakdown of one haulage income entry.
type Income struct {
	ProductKey            string
	ProductLabel          string
	TruckKey              string
	TruckLabel            string
	Quantity              int
	UnitPrice             decimal.Decimal
	PerLoadDeductions     map[string]decimal.Decimal
	Gross                 decimal.Decimal
	PerLoadDeductionTotal decimal.Decimal
	DeductionTotal        decimal.Decimal
	Net                   decimal.Decimal
	Notes                 string
}

// incomeWire is the JSON shape on the wire. Decimals marshal as strings,
// which keeps the round trip exact.
type incomeWire struct {
	Type                  string                     `json:"__type"`
	ProductKey            string                     `json:"product_key"`
	ProductLabel          string                     `json:"product_label"`
	TruckKey              string                     `json:"truck_key"`
	TruckLabel            string                     `json:"truck_label"`
	Quantity              int                        `json:"quantity"`
	UnitPrice             decimal.Decimal            `json:"unit_price"`
	PerLoadDeductions     map[string]decimal.Decimal `json:"per_load_deductions,omitempty"`
	Gross                 decimal.Decimal            `json:"gross"`
	PerLoadDeductionTotal decimal.Decimal            `json:"per_load_deduction_total"`
	DeductionTotal        decimal.Decimal            `json:"deduction_total"`
	Net                   decimal.Decimal            `json:"net"`
	Notes                 string                     `json:"notes,omitempty"`
}

// ComputeTotals derives the dependent fields from quantity, unit price and
// per-load rates. Rounding happens where the rates are produced, not here.
func ComputeTotals(p *Income) {
	p.Gross = p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
	perLoad := decimal.Zero
	for _, v := range p.PerLoadDeductions {
		perLoad = perLoad.Add(v)
	}
	p.PerLoadDeductionTotal = perLoad
	p.DeductionTotal = perLoad.Mul(decimal.NewFromInt(int64(p.Quantity)))
	p.Net = p.Gross.Sub(p.DeductionTotal)
}

// Encode serializes the payload with its discriminator tag.
func Encode(p Income) (string, error) {
	w := incomeWire{
		Type:                  TypeIncomeV1,
		ProductKey:            p.ProductKey,
		ProductLabel:          p.ProductLabel,
		TruckKey:              p.TruckKey,
		TruckLabel:            p.TruckLabel,
		Quantity:              p.Quantity,
		UnitPrice:             p.UnitPrice,
		PerLoadDeductions:     p.PerLoadDeductions,
		Gross:                 p.Gross,
		PerLoadDeductionTotal: p.PerLoadDeductionTotal,
		DeductionTotal:        p.DeductionTotal,
		Net:                   p.Net,
		Notes:                 p.Notes,
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Kind discriminates decode results.
type Kind int

const (
	// KindUnstructured covers free text, unparseable JSON, and unknown
	// discriminators. The raw text must be treated as opaque.
	KindUnstructured Kind = iota
	KindIncome
)

// Decoded is the total decode result: every description decodes to
// something, so legacy free-text records stay valid data.
type Decoded struct {
	Kind   Kind
	Income *Income
	Raw    string
}

// Decode parses a description field. It never returns an error: anything
// that is not a syntactically valid income-v1 payload comes back as the
// unstructured variant carrying the original text.
func Decode(text string) Decoded {
	unstructured := Decoded{Kind: KindUnstructured, Raw: text}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return unstructured
	}

	var probe struct {
		Type string `json:"__type"`
	}
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil || probe.Type != TypeIncomeV1 {
		return unstructured
	}

	var w incomeWire
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return unstructured
	}

	return Decoded{
		Kind: KindIncome,
		Income: &Income{
			ProductKey:            w.ProductKey,
			ProductLabel:          w.ProductLabel,
			TruckKey:              w.TruckKey,
			TruckLabel:            w.TruckLabel,
			Quantity:              w.Quantity,
			UnitPrice:             w.UnitPrice,
			PerLoadDeductions:     w.PerLoadDeductions,
			Gross:                 w.Gross,
			PerLoadDeductionTotal: w.PerLoadDeductionTotal,
			DeductionTotal:        w.DeductionTotal,
			Net:                   w.Net,
			Notes:                 w.Notes,
		},
		Raw: text,
	}
}

// DecodeIncome is a convenience for callers that only care about income
// payloads; it returns nil for anything unstructured.
func DecodeIncome(text string) *Income {
	d := Decode(text)
	return d.Income
}

// Equal compares two payloads field for field, with decimal equality
// independent of representation (1 vs 1.0).
func (p *Income) Equal(other *Income) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.ProductKey != other.ProductKey ||
		p.ProductLabel != other.ProductLabel ||
		p.TruckKey != other.TruckKey ||
		p.TruckLabel != other.TruckLabel ||
		p.Quantity != other.Quantity ||
		p.Notes != other.Notes {
		return false
	}
	if !p.UnitPrice.Equal(other.UnitPrice) ||
		!p.Gross.Equal(other.Gross) ||
		!p.PerLoadDeductionTotal.Equal(other.PerLoadDeductionTotal) ||
		!p.DeductionTotal.Equal(other.DeductionTotal) ||
		!p.Net.Equal(other.Net) {
		return false
	}
	if len(p.PerLoadDeductions) != len(other.PerLoadDeductions) {
		return false
	}
	for k, v := range p.PerLoadDeductions {
		ov, ok := other.PerLoadDeductions[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
