// Package reconcile detects likely duplicates between bank-imported
// transactions and manually entered ledger records, so the same real-world
// payment is not counted once as a manual entry and once as a bank line.
//
// Detection is a pure, synchronous computation over in-memory views: it does
// no I/O, holds no state between runs, and never mutates its inputs. Each run
// emits MatchRecord values for human review; persistence and the review UI
// live outside this package.
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind tags a ledger entry as income or expense.
type EntryKind string

const (
	KindIncome  EntryKind = "INCOME"
	KindExpense EntryKind = "EXPENSE"
)

// Valid reports whether k is a recognized kind.
func (k EntryKind) Valid() bool { return k == KindIncome || k == KindExpense }

// ReviewStatus is the bank transaction's bookkeeping state.
type ReviewStatus string

const (
	ReviewActive   ReviewStatus = "ACTIVE"
	ReviewExcluded ReviewStatus = "EXCLUDED"
)

// Tier classifies match strength, strongest first. LINKED describes a pair the
// user already connected deliberately; it is a pass-through classification and
// never appears in detection output.
type Tier string

const (
	TierLinked   Tier = "LINKED"
	TierExact    Tier = "EXACT"
	TierLikely   Tier = "LIKELY"
	TierPossible Tier = "POSSIBLE"
)

// MatchStatus is the resolution state of a match record.
type MatchStatus string

const (
	StatusUnresolved MatchStatus = "UNRESOLVED"
	StatusConfirmed  MatchStatus = "CONFIRMED"
	StatusDismissed  MatchStatus = "DISMISSED"
)

// BankTransactionView is a read-only projection of an imported bank line.
// Amount is signed: positive means inbound (income-like), negative outbound
// (expense-like). A zero amount is never matched.
type BankTransactionView struct {
	ID              string
	BusinessID      string
	Date            time.Time
	Amount          decimal.Decimal
	Description     string
	ReviewStatus    ReviewStatus
	LinkedIncomeID  *string
	LinkedExpenseID *string
}

// Promoted reports whether the transaction has already been turned into a
// ledger record. Promoted transactions are not duplicate candidates.
func (t BankTransactionView) Promoted() bool {
	return t.LinkedIncomeID != nil || t.LinkedExpenseID != nil
}

// LedgerEntryView is a read-only projection of a manually entered income or
// expense record. Amount is unsigned; Kind carries the direction.
// LinkedBankTransactionID, when set, points at the bank transaction this entry
// was reconciled from. An intentional link is not a duplicate.
type LedgerEntryView struct {
	ID                      string
	BusinessID              string
	Date                    time.Time
	Amount                  decimal.Decimal
	Description             string
	Kind                    EntryKind
	LinkedBankTransactionID *string
}

// MatchRecord is one detected (bank transaction, ledger entry) pairing queued
// for human review. Records are append-only at the storage boundary: after
// creation only Status, ResolvedAt and ResolvedBy ever change, through
// Confirm or Dismiss.
type MatchRecord struct {
	ID                string
	BankTransactionID string
	LedgerEntryID     string
	EntryKind         EntryKind
	Confidence        float64
	Tier              Tier
	Status            MatchStatus
	BusinessID        string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
	ResolvedBy        *string
}

// Key identifies a match independent of run identity. Re-running detection on
// unchanged inputs reproduces the same keys with fresh IDs and timestamps, so
// callers de-duplicate on Key before persisting.
type Key struct {
	BankTransactionID string
	LedgerEntryID     string
	Tier              Tier
}

// Key returns the run-independent identity of the match.
func (m MatchRecord) Key() Key {
	return Key{BankTransactionID: m.BankTransactionID, LedgerEntryID: m.LedgerEntryID, Tier: m.Tier}
}

// dayKey formats a date as its calendar day for map indexing.
func dayKey(t time.Time) string { return t.Format(time.DateOnly) }
