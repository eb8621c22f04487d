package transactions

import (
	"context"
	"time"
)

// RecordError pins an insert failure to the position of the record in
// the submitted batch.
type RecordError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkCreateResult summarizes a non-transactional bulk insert. Imported
// plus Failed always equals the submitted batch size.
type BulkCreateResult struct {
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Errors   []RecordError `json:"errors,omitempty"`
}

// Repository is the persistence boundary for ledger records.
type Repository interface {
	// BulkCreate inserts records one by one. A failing record is
	// reported in the result and never aborts the rest of the batch.
	BulkCreate(ctx context.Context, records []Record) (*BulkCreateResult, error)
	// FindAll returns every record, newest transaction date first.
	FindAll(ctx context.Context) ([]Record, error)
	// FindByPeriod returns records with from <= TransDate < to.
	FindByPeriod(ctx context.Context, from, to time.Time) ([]Record, error)
	// Delete removes a single record by id.
	Delete(ctx context.Context, id string) error
}
