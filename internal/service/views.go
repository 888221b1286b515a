package service

import (
	"github.com/shopspring/decimal"

	"github.com/tomwrigg/taxfolio/internal/database/repository"
	"github.com/tomwrigg/taxfolio/internal/reconcile"
)

// Amounts are stored as integer cents and compared as 2-decimal values; the
// conversion happens here, at the storage/engine boundary.

func centsToDecimal(cents int64) decimal.Decimal { return decimal.New(cents, -2) }

func bankView(t repository.BankTransaction) reconcile.BankTransactionView {
	return reconcile.BankTransactionView{
		ID:              t.ID,
		BusinessID:      t.BusinessID,
		Date:            t.Date,
		Amount:          centsToDecimal(t.AmountCents),
		Description:     t.Description,
		ReviewStatus:    reconcile.ReviewStatus(t.ReviewStatus),
		LinkedIncomeID:  t.LinkedIncomeID,
		LinkedExpenseID: t.LinkedExpenseID,
	}
}

func ledgerView(e repository.LedgerEntry) reconcile.LedgerEntryView {
	return reconcile.LedgerEntryView{
		ID:                      e.ID,
		BusinessID:              e.BusinessID,
		Date:                    e.Date,
		Amount:                  centsToDecimal(e.AmountCents),
		Description:             e.Description,
		Kind:                    reconcile.EntryKind(e.Kind),
		LinkedBankTransactionID: e.LinkedBankTransactionID,
	}
}

func matchRow(m reconcile.MatchRecord) repository.MatchRecord {
	return repository.MatchRecord{
		ID:                m.ID,
		BankTransactionID: m.BankTransactionID,
		LedgerEntryID:     m.LedgerEntryID,
		EntryKind:         string(m.EntryKind),
		Confidence:        m.Confidence,
		Tier:              string(m.Tier),
		Status:            string(m.Status),
		BusinessID:        m.BusinessID,
		CreatedAt:         m.CreatedAt,
		ResolvedAt:        m.ResolvedAt,
		ResolvedBy:        m.ResolvedBy,
	}
}

func matchFromRow(m repository.MatchRecord) reconcile.MatchRecord {
	return reconcile.MatchRecord{
		ID:                m.ID,
		BankTransactionID: m.BankTransactionID,
		LedgerEntryID:     m.LedgerEntryID,
		EntryKind:         reconcile.EntryKind(m.EntryKind),
		Confidence:        m.Confidence,
		Tier:              reconcile.Tier(m.Tier),
		Status:            reconcile.MatchStatus(m.Status),
		BusinessID:        m.BusinessID,
		CreatedAt:         m.CreatedAt,
		ResolvedAt:        m.ResolvedAt,
		ResolvedBy:        m.ResolvedBy,
	}
}
