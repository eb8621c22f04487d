package money

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator produces realistic haulage ledger data with gofakeit.
// Used by tests across the import and export packages.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a specific seed so test
// data is reproducible.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// TestHaul is one generated truck load entry.
type TestHaul struct {
	Date       time.Time
	Product    string
	Quantity   int
	UnitPrice  decimal.Decimal
	LoadingFee decimal.Decimal
	MarketFee  decimal.Decimal
	BrokerFee  decimal.Decimal
}

var haulProducts = []string{
	"Pasir", "Batu Split", "Semen", "Kayu", "Beras",
	"Pupuk", "Gula", "Tepung", "Kerikil", "Bata Merah",
}

// Product returns a random cargo name.
func (g *TestDataGenerator) Product() string {
	return haulProducts[g.faker.Number(0, len(haulProducts)-1)]
}

// Rupiah returns a random whole-rupiah amount within a range.
func (g *TestDataGenerator) Rupiah(min, max int) decimal.Decimal {
	return decimal.NewFromInt(int64(g.faker.Number(min, max)))
}

// Haul generates a single random load entry within one month.
func (g *TestDataGenerator) Haul(year int, month time.Month) TestHaul {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return TestHaul{
		Date:       g.faker.DateRange(first, last).Truncate(24 * time.Hour),
		Product:    g.Product(),
		Quantity:   g.faker.Number(1, 20),
		UnitPrice:  g.Rupiah(100_000, 500_000),
		LoadingFee: g.Rupiah(5_000, 50_000),
		MarketFee:  g.Rupiah(2_000, 20_000),
		BrokerFee:  g.Rupiah(0, 30_000),
	}
}

// Hauls generates count random load entries.
func (g *TestDataGenerator) Hauls(year int, month time.Month, count int) []TestHaul {
	hauls := make([]TestHaul, count)
	for i := range hauls {
		hauls[i] = g.Haul(year, month)
	}
	return hauls
}
