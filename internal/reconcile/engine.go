package reconcile

import "time"

// Detect runs one reconciliation pass for a business: every eligible bank
// transaction is compared against the same-day ledger entries matching its
// direction, and every qualifying pair becomes an UNRESOLVED MatchRecord with
// CreatedAt = now.
//
// The pass is deterministic for a fixed now, except that record IDs are
// freshly minted each run: unchanged inputs reproduce the same set of
// MatchRecord Keys with new identities. Detect performs no idempotence check
// against previously persisted matches; callers de-duplicate on Key before
// inserting, and must serialize overlapping runs for the same business.
func Detect(txs []BankTransactionView, income, expense []LedgerEntryView, businessID string, now time.Time) ([]MatchRecord, error) {
	if businessID == "" {
		return nil, ErrMissingBusinessID
	}

	incomeByDay := indexByDay(income, businessID)
	expenseByDay := indexByDay(expense, businessID)

	var matches []MatchRecord
	for _, tx := range txs {
		if tx.BusinessID != businessID {
			continue
		}
		if tx.Promoted() {
			// already turned into a ledger record, not a duplicate candidate
			continue
		}
		if tx.ReviewStatus == ReviewExcluded {
			continue
		}

		var pool map[string][]LedgerEntryView
		switch tx.Amount.Sign() {
		case 1:
			pool = incomeByDay
		case -1:
			pool = expenseByDay
		default:
			continue // zero amount is neither income- nor expense-like
		}

		candidates := filterCandidates(pool[dayKey(tx.Date)], tx)
		found, err := classify(tx, candidates, now)
		if err != nil {
			return nil, err
		}
		matches = append(matches, found...)
	}
	return matches, nil
}

// indexByDay buckets the business's entries by calendar day so each
// transaction only scans same-day candidates.
func indexByDay(entries []LedgerEntryView, businessID string) map[string][]LedgerEntryView {
	byDay := make(map[string][]LedgerEntryView)
	for _, e := range entries {
		if e.BusinessID != businessID {
			continue
		}
		k := dayKey(e.Date)
		byDay[k] = append(byDay[k], e)
	}
	return byDay
}

// filterCandidates drops entries the user already linked to this transaction.
// Only the entry's own back-pointer is consulted: an entry linked to some
// other bank transaction remains a candidate here.
func filterCandidates(entries []LedgerEntryView, tx BankTransactionView) []LedgerEntryView {
	out := entries[:0:0]
	for _, e := range entries {
		if e.LinkedBankTransactionID != nil && *e.LinkedBankTransactionID == tx.ID {
			continue
		}
		out = append(out, e)
	}
	return out
}
