package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// likelyThreshold is the minimum description similarity for a LIKELY match
// when amounts are exactly equal.
const likelyThreshold = 0.80

// possibleConfidence is the fixed confidence of every POSSIBLE match. It is a
// floor constant meaning "weak signal, mandatory human review", not a measured
// probability; the amount tolerance alone says nothing about how likely the
// pairing really is.
const possibleConfidence = 0.30

// classify evaluates one bank transaction against its pre-filtered candidate
// list and returns a match draft per qualifying candidate. Candidates must
// already share the transaction's business, date and direction, and must not
// be linked to it. Tiers are tried strongest first and a candidate lands in at
// most one; several candidates may qualify independently, disambiguation is
// the reviewer's job.
func classify(tx BankTransactionView, candidates []LedgerEntryView, now time.Time) ([]MatchRecord, error) {
	var out []MatchRecord
	txAmount := tx.Amount.Abs()
	for _, cand := range candidates {
		tier, confidence, ok := evaluate(tx, txAmount, cand)
		if !ok {
			continue
		}
		m, err := NewMatchRecord(tx.ID, cand.ID, cand.Kind, tier, confidence, tx.BusinessID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func evaluate(tx BankTransactionView, txAmount decimal.Decimal, cand LedgerEntryView) (Tier, float64, bool) {
	if AmountsExact(txAmount, cand.Amount) {
		sim := Similarity(tx.Description, cand.Description)
		if sim == 1.0 {
			return TierExact, 1.0, true
		}
		if sim >= likelyThreshold {
			return TierLikely, sim, true
		}
		// similarity too weak for LIKELY; falls through to the tolerance
		// check below, which exact amounts always satisfy
	}
	if AmountsWithinTolerance(txAmount, cand.Amount) {
		return TierPossible, possibleConfidence, true
	}
	return "", 0, false
}
