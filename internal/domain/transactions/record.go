// Package transactions holds the persisted ledger record and its
// repository. A record's Description may carry a structured payload
// (see internal/domain/payload); this package treats it as opaque text.
package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one ledger entry. Amount is the transaction value in
// rupiah; both import flows only produce non-negative amounts.
type Record struct {
	ID          uuid.UUID
	TransDate   time.Time
	Category    string
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}
