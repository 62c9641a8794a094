package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessedTransaction is the validated form of one legacy feed row.
// Immutable after construction. Anomaly is true iff Message is non-empty.
type ProcessedTransaction struct {
	AccountNumber string          // trimmed feed id, "" if absent
	TxnDate       time.Time       // parsed date, or the processing date when unparsable
	Amount        decimal.Decimal // parsed amount, zero when unparsable
	Category      string          // normalized lowercase type tag, "unknown" when blank
	Anomaly       bool
	Message       string // "; "-joined violation descriptions, "" when clean
}
