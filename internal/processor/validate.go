// Package processor holds the pipeline's transformation stages: the
// legacy-feed transaction validator, the monthly interest calculator, and
// the annual statement aggregator. All three are pure mappings from one
// input item to one output item; data-quality findings never surface as
// errors, they land on the output record.
package processor

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bancodev/bankbatch/internal/model"
)

// AccountLookup resolves accounts by number.
type AccountLookup interface {
	FindAccountByNumber(number string) (model.Account, bool)
}

// Violation messages, kept verbatim from the bank's legacy reports.
const (
	MsgAccountEmpty     = "Número de cuenta vacío"
	MsgAmountEmpty      = "Monto vacío"
	MsgDateEmpty        = "Fecha vacía"
	MsgAccountNotFound  = "Cuenta inexistente"
	MsgAmountOverMax    = "Monto excede límite máximo"
	MsgAmountUnderMin   = "Monto excede límite mínimo"
	MsgAmountZero       = "Monto no puede ser cero"
	MsgAmountFormat     = "Formato de monto inválido"
	MsgDateFuture       = "Fecha futura no permitida"
	MsgDateTooOld       = "Fecha muy antigua"
	MsgDateFormat       = "Formato de fecha inválido (usar YYYY-MM-DD)"
	MsgCategoryInvalid  = "Tipo de transacción inválido"
	MsgCategoryEmpty    = "Tipo de transacción vacío"
	MsgWithdrawalExceed = "Retiro excede saldo disponible"
	MsgLoanPayNegative  = "Pago de préstamo debe ser positivo"
)

const dateLayout = "2006-01-02"

// CategoryUnknown is stored when the feed's type tag is blank.
const CategoryUnknown = "unknown"

var (
	maxAmount = decimal.RequireFromString("1000000.00")
	minAmount = decimal.RequireFromString("-1000000.00")

	validCategories = map[string]bool{
		"credito":       true,
		"debito":        true,
		"transferencia": true,
		"pago":          true,
		"retiro":        true,
		"deposito":      true,
	}
)

// Validator maps one legacy feed record to a ProcessedTransaction,
// evaluating every applicable rule without short-circuiting so the output
// message can report multiple simultaneous defects. A clean record and a
// violating record share the same construction path.
type Validator struct {
	accounts AccountLookup
	now      func() time.Time
}

// NewValidator creates a Validator. A nil now defaults to time.Now.
func NewValidator(accounts AccountLookup, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{accounts: accounts, now: now}
}

// Process implements batch.Processor. Validation findings are data-quality
// only and never return an error.
func (v *Validator) Process(_ context.Context, rec model.LegacyRecord) (model.ProcessedTransaction, error) {
	return v.Validate(rec), nil
}

// Validate runs the full rule set over one record.
func (v *Validator) Validate(rec model.LegacyRecord) model.ProcessedTransaction {
	var violations []string
	violate := func(msg string) {
		violations = append(violations, msg)
	}

	id := strings.TrimSpace(rec.ID)
	rawAmount := strings.TrimSpace(rec.Monto)
	rawDate := strings.TrimSpace(rec.Fecha)
	rawTipo := strings.TrimSpace(rec.Tipo)

	// Rule 1: required fields.
	if id == "" {
		violate(MsgAccountEmpty)
	}
	if rawAmount == "" {
		violate(MsgAmountEmpty)
	}
	if rawDate == "" {
		violate(MsgDateEmpty)
	}

	// Rule 2: account existence. The lookup result feeds rule 6.
	var account model.Account
	accountFound := false
	if id != "" {
		account, accountFound = v.accounts.FindAccountByNumber(id)
		if !accountFound {
			violate(MsgAccountNotFound)
		}
	}

	// Rule 3: amount parse and range. Amount defaults to 0 downstream.
	amount := decimal.Zero
	amountParsed := false
	if rawAmount != "" {
		parsed, err := decimal.NewFromString(rawAmount)
		if err != nil {
			violate(MsgAmountFormat)
		} else {
			amount = parsed
			amountParsed = true
			if amount.GreaterThan(maxAmount) {
				violate(MsgAmountOverMax)
			} else if amount.LessThan(minAmount) {
				violate(MsgAmountUnderMin)
			}
			if amount.IsZero() {
				violate(MsgAmountZero)
			}
		}
	}

	// Rule 4: date parse and range. Unparsable or absent dates fall back
	// to the processing date.
	today := dateOnly(v.now())
	txnDate := today
	if rawDate != "" {
		parsed, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			violate(MsgDateFormat)
		} else {
			txnDate = parsed
			if parsed.After(today) {
				violate(MsgDateFuture)
			}
			// Exactly 10 years in the past is still allowed.
			if parsed.Before(today.AddDate(-10, 0, 0)) {
				violate(MsgDateTooOld)
			}
		}
	}

	// Rule 5: category normalization. An unrecognized value is a violation
	// but the normalized value is still stored.
	category := strings.ToLower(rawTipo)
	if category == "" {
		category = CategoryUnknown
		violate(MsgCategoryEmpty)
	} else if !validCategories[category] {
		violate(MsgCategoryInvalid)
	}

	// Rule 6: account-type business rules.
	if accountFound && amountParsed {
		if account.Type == model.AccountTypeSavings && amount.IsNegative() {
			if account.Balance.Add(amount).IsNegative() {
				violate(MsgWithdrawalExceed)
			}
		}
		if account.Type == model.AccountTypeLoan && category == "pago" && amount.IsNegative() {
			violate(MsgLoanPayNegative)
		}
	}

	return model.ProcessedTransaction{
		AccountNumber: id,
		TxnDate:       txnDate,
		Amount:        amount,
		Category:      category,
		Anomaly:       len(violations) > 0,
		Message:       strings.Join(violations, "; "),
	}
}

// dateOnly truncates a timestamp to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
