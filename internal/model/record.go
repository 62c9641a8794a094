package model

// LegacyRecord is one raw row from the legacy transaction feed. All fields
// are untyped strings exactly as read; any of them may be malformed.
// The feed's column names are configurable but the order is fixed:
// id, fecha, monto, tipo.
type LegacyRecord struct {
	ID     string // transaction/account id
	Fecha  string // date, expected YYYY-MM-DD
	Monto  string // amount as text
	Tipo   string // transaction type tag
	LineNo int    // 1-based line number in the feed, for diagnostics
}
