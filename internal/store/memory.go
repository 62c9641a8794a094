// Package store provides the key-indexed persistence collaborator: an
// in-memory account master plus batch stores for pipeline output, with CSV
// load and export layers.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/bancodev/bankbatch/internal/model"
)

// Memory holds all persisted state for a run. Batch saves are
// all-or-nothing: a save either lands every item in the batch or mutates
// nothing.
type Memory struct {
	mu         sync.RWMutex
	accounts   map[string]model.Account
	order      []string // account numbers in load order
	txns       []model.ProcessedTransaction
	ledger     []model.InterestLedgerEntry
	statements []model.AnnualStatement
}

// NewMemory creates a Memory store seeded with accounts. Later duplicates
// of an account number replace the earlier entry.
func NewMemory(accounts []model.Account) *Memory {
	m := &Memory{accounts: make(map[string]model.Account, len(accounts))}
	for _, a := range accounts {
		if _, seen := m.accounts[a.AccountNumber]; !seen {
			m.order = append(m.order, a.AccountNumber)
		}
		m.accounts[a.AccountNumber] = a
	}
	return m
}

// FindAccountByNumber looks up an account by its number.
func (m *Memory) FindAccountByNumber(number string) (model.Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[number]
	return a, ok
}

// AllAccounts returns every account in load order.
func (m *Memory) AllAccounts() []model.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Account, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.accounts[n])
	}
	return out
}

// SaveProcessedTransactions persists one chunk of processed transactions.
func (m *Memory) SaveProcessedTransactions(batch []model.ProcessedTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, batch...)
	return nil
}

// ApplyInterest persists one chunk of ledger entries and writes each
// referenced account's balance forward to the entry's new balance. The two
// effects commit together: every account is resolved before anything is
// mutated, so a chunk with an unknown account changes nothing.
func (m *Memory) ApplyInterest(entries []model.InterestLedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		if _, ok := m.accounts[e.AccountNumber]; !ok {
			return fmt.Errorf("applying interest: unknown account %q", e.AccountNumber)
		}
	}

	m.ledger = append(m.ledger, entries...)
	for _, e := range entries {
		a := m.accounts[e.AccountNumber]
		a.Balance = e.NewBalance
		m.accounts[e.AccountNumber] = a
	}
	return nil
}

// SaveAnnualStatements persists one chunk of annual statements.
func (m *Memory) SaveAnnualStatements(batch []model.AnnualStatement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements = append(m.statements, batch...)
	return nil
}

// FindTransactionsByAccountAndDateRange returns the processed transactions
// of one account whose date falls within [start, end], in saved order.
func (m *Memory) FindTransactionsByAccountAndDateRange(number string, start, end time.Time) []model.ProcessedTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.ProcessedTransaction
	for _, t := range m.txns {
		if t.AccountNumber != number {
			continue
		}
		if t.TxnDate.Before(start) || t.TxnDate.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ProcessedTransactions returns all saved processed transactions.
func (m *Memory) ProcessedTransactions() []model.ProcessedTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ProcessedTransaction, len(m.txns))
	copy(out, m.txns)
	return out
}

// LedgerEntries returns all saved interest ledger entries.
func (m *Memory) LedgerEntries() []model.InterestLedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.InterestLedgerEntry, len(m.ledger))
	copy(out, m.ledger)
	return out
}

// AnnualStatements returns all saved annual statements.
func (m *Memory) AnnualStatements() []model.AnnualStatement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.AnnualStatement, len(m.statements))
	copy(out, m.statements)
	return out
}
