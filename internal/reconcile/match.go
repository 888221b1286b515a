package reconcile

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissingBusinessID is returned when detection is invoked without a
	// business identifier. Every comparison is business-scoped.
	ErrMissingBusinessID = errors.New("reconcile: business id is required")

	// ErrAlreadyResolved is returned when confirming or dismissing a match
	// that is no longer UNRESOLVED. Resolution is one-way; a change of mind is
	// a fresh record, not a reopened one.
	ErrAlreadyResolved = errors.New("reconcile: match already resolved")
)

// NewMatchRecord builds an UNRESOLVED match with a fresh identity. Invariant
// violations here are programming errors in the caller and abort the whole
// detection batch: a partially valid duplicate report over financial data is
// worse than no report.
func NewMatchRecord(bankTransactionID, ledgerEntryID string, kind EntryKind, tier Tier, confidence float64, businessID string, now time.Time) (MatchRecord, error) {
	if bankTransactionID == "" {
		return MatchRecord{}, errors.New("reconcile: bank transaction id is required")
	}
	if ledgerEntryID == "" {
		return MatchRecord{}, errors.New("reconcile: ledger entry id is required")
	}
	if businessID == "" {
		return MatchRecord{}, ErrMissingBusinessID
	}
	if !kind.Valid() {
		return MatchRecord{}, fmt.Errorf("reconcile: unknown entry kind %q", kind)
	}
	if confidence < 0 || confidence > 1 {
		return MatchRecord{}, fmt.Errorf("reconcile: confidence %v outside [0,1]", confidence)
	}
	return MatchRecord{
		ID:                uuid.NewString(),
		BankTransactionID: bankTransactionID,
		LedgerEntryID:     ledgerEntryID,
		EntryKind:         kind,
		Confidence:        confidence,
		Tier:              tier,
		Status:            StatusUnresolved,
		BusinessID:        businessID,
		CreatedAt:         now,
	}, nil
}

// Confirm marks the match as a genuine duplicate. Returns a new record value;
// the input is unchanged. The caller is responsible for persisting the
// transition and for excluding the bank transaction from promotion.
func Confirm(m MatchRecord, resolvedAt time.Time, resolvedBy string) (MatchRecord, error) {
	return resolve(m, StatusConfirmed, resolvedAt, resolvedBy)
}

// Dismiss marks the match as not a duplicate. The bank transaction stays
// eligible for categorization and may be re-flagged by a later run against
// different candidates.
func Dismiss(m MatchRecord, resolvedAt time.Time, resolvedBy string) (MatchRecord, error) {
	return resolve(m, StatusDismissed, resolvedAt, resolvedBy)
}

func resolve(m MatchRecord, to MatchStatus, at time.Time, by string) (MatchRecord, error) {
	if m.Status != StatusUnresolved {
		return MatchRecord{}, fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, m.ID, m.Status)
	}
	m.Status = to
	m.ResolvedAt = &at
	m.ResolvedBy = &by
	return m, nil
}
