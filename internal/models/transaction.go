package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single canonical expense record produced by the
// normalizer. Immutable once ingested; a new upload for the same user
// replaces the prior set entirely.
type Transaction struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"` // always >= 0
	Category string          `json:"category"`
	Date     time.Time       `json:"date"` // calendar date, UTC midnight
}

// MonthKey returns the calendar month of the transaction as "YYYY-MM".
func (t Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

// DateKey returns the calendar date of the transaction as "YYYY-MM-DD".
func (t Transaction) DateKey() string {
	return t.Date.Format("2006-01-02")
}
