package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bancodev/bankbatch/internal/model"
)

const dateFormat = "2006-01-02"

const (
	acctNumFields = 4
	acctColNumber = 0
	acctColType   = 1
	acctColBal    = 2
	acctColRate   = 3
)

// ReadAccounts reads the account master CSV
// (account_number,type,balance,annual_interest_rate).
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = acctNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// LoadAccounts reads the account master CSV from a file.
func LoadAccounts(path string) ([]model.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening accounts file: %w", err)
	}
	defer f.Close()

	accounts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("loading accounts %s: %w", path, err)
	}
	return accounts, nil
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != acctNumFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", acctNumFields, len(record))
	}

	balance, err := decimal.NewFromString(record[acctColBal])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[acctColBal], err)
	}

	rate, err := decimal.NewFromString(record[acctColRate])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing annual_interest_rate %q: %w", record[acctColRate], err)
	}

	return model.Account{
		AccountNumber:      record[acctColNumber],
		Type:               model.AccountType(record[acctColType]),
		Balance:            balance,
		AnnualInterestRate: rate,
	}, nil
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	return []string{
		a.AccountNumber,
		string(a.Type),
		a.Balance.StringFixed(2),
		a.AnnualInterestRate.String(),
	}
}

// WriteProcessedTransactions writes processed transactions with a header.
func WriteProcessedTransactions(w io.Writer, txns []model.ProcessedTransaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_number", "txn_date", "amount", "category", "anomaly", "message"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		row := []string{
			t.AccountNumber,
			t.TxnDate.Format(dateFormat),
			t.Amount.StringFixed(2),
			t.Category,
			strconv.FormatBool(t.Anomaly),
			t.Message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// WriteLedgerEntries writes interest ledger entries with a header.
func WriteLedgerEntries(w io.Writer, entries []model.InterestLedgerEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_number", "period_yyyymm", "interest_amount", "new_balance"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		row := []string{
			e.AccountNumber,
			e.PeriodYyyymm,
			e.InterestAmount.StringFixed(2),
			e.NewBalance.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// WriteAnnualStatements writes annual statements with a header.
func WriteAnnualStatements(w io.Writer, statements []model.AnnualStatement) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_number", "year", "total_deposits", "total_withdrawals", "end_balance"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range statements {
		row := []string{
			s.AccountNumber,
			strconv.Itoa(s.Year),
			s.TotalDeposits.StringFixed(2),
			s.TotalWithdrawals.StringFixed(2),
			s.EndBalance.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// WriteAccounts writes the account master with a header.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_number", "type", "balance", "annual_interest_rate"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		if err := cw.Write(MarshalAccount(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// Export writes every non-empty output set of the store to CSV files in
// dir, plus the account master with balances as of now.
func (m *Memory) Export(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	if txns := m.ProcessedTransactions(); len(txns) > 0 {
		if err := exportFile(filepath.Join(dir, "processed_transactions.csv"), func(w io.Writer) error {
			return WriteProcessedTransactions(w, txns)
		}); err != nil {
			return err
		}
	}
	if entries := m.LedgerEntries(); len(entries) > 0 {
		if err := exportFile(filepath.Join(dir, "interest_ledger.csv"), func(w io.Writer) error {
			return WriteLedgerEntries(w, entries)
		}); err != nil {
			return err
		}
	}
	if statements := m.AnnualStatements(); len(statements) > 0 {
		if err := exportFile(filepath.Join(dir, "annual_statements.csv"), func(w io.Writer) error {
			return WriteAnnualStatements(w, statements)
		}); err != nil {
			return err
		}
	}
	return exportFile(filepath.Join(dir, "accounts.csv"), func(w io.Writer) error {
		return WriteAccounts(w, m.AllAccounts())
	})
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ParseDate parses a store date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, s)
}
