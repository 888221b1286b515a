package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tomwrigg/taxfolio/internal/database"
	"github.com/tomwrigg/taxfolio/internal/database/repository"
	"github.com/tomwrigg/taxfolio/internal/reconcile"
)

// Reconciler runs duplicate detection and the review workflow around the pure
// engine: it loads the business's rows, persists what the engine finds, and
// applies user resolutions.
type Reconciler struct {
	DB      *sql.DB
	Bank    *repository.BankTransactionRepo
	Ledger  *repository.LedgerEntryRepo
	Matches *repository.MatchRepo

	// one detection pass at a time per business; a concurrent sibling run
	// would insert the duplicates this run just checked for
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// RunSummary reports what one detection pass did.
type RunSummary struct {
	Transactions  int // bank transactions examined
	Detected      int // matches the engine produced
	Queued        int // newly persisted for review
	AlreadyQueued int // skipped, an equivalent UNRESOLVED match exists
}

// DetectAndQueue runs one reconciliation pass for the business and persists
// every detected match that is not already queued. A match is "already
// queued" when an UNRESOLVED record with the same (bank transaction, ledger
// entry, tier) exists; resolved records never block re-detection.
func (r *Reconciler) DetectAndQueue(ctx context.Context, businessID string) (RunSummary, error) {
	lock := r.businessLock(businessID)
	lock.Lock()
	defer lock.Unlock()

	txRows, err := r.Bank.ListByBusiness(ctx, businessID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("list bank transactions: %w", err)
	}
	incomeRows, err := r.Ledger.ListByBusiness(ctx, businessID, string(reconcile.KindIncome))
	if err != nil {
		return RunSummary{}, fmt.Errorf("list income entries: %w", err)
	}
	expenseRows, err := r.Ledger.ListByBusiness(ctx, businessID, string(reconcile.KindExpense))
	if err != nil {
		return RunSummary{}, fmt.Errorf("list expense entries: %w", err)
	}

	txs := make([]reconcile.BankTransactionView, 0, len(txRows))
	for _, t := range txRows {
		txs = append(txs, bankView(t))
	}
	income := make([]reconcile.LedgerEntryView, 0, len(incomeRows))
	for _, e := range incomeRows {
		income = append(income, ledgerView(e))
	}
	expense := make([]reconcile.LedgerEntryView, 0, len(expenseRows))
	for _, e := range expenseRows {
		expense = append(expense, ledgerView(e))
	}

	matches, err := reconcile.Detect(txs, income, expense, businessID, database.Now())
	if err != nil {
		return RunSummary{}, fmt.Errorf("detect: %w", err)
	}

	open, err := r.Matches.ListUnresolved(ctx, businessID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("list unresolved matches: %w", err)
	}
	queued := make(map[reconcile.Key]bool, len(open))
	for _, m := range open {
		queued[matchFromRow(m).Key()] = true
	}

	summary := RunSummary{Transactions: len(txRows), Detected: len(matches)}
	for _, m := range matches {
		if queued[m.Key()] {
			summary.AlreadyQueued++
			continue
		}
		if err := r.Matches.Insert(ctx, matchRow(m)); err != nil {
			return RunSummary{}, fmt.Errorf("queue match %s: %w", m.ID, err)
		}
		summary.Queued++
	}

	slog.Info("reconciliation pass complete",
		"business", businessID,
		"transactions", summary.Transactions,
		"detected", summary.Detected,
		"queued", summary.Queued,
		"already_queued", summary.AlreadyQueued)
	return summary, nil
}

// Decide applies a user resolution to a pending match. Confirming marks the
// pair a genuine duplicate and excludes the bank transaction from promotion;
// dismissing leaves the transaction eligible for categorization and future
// re-flagging.
func (r *Reconciler) Decide(ctx context.Context, matchID string, isDuplicate bool, resolvedBy string) error {
	row, err := r.Matches.Get(ctx, matchID)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("match %s not found", matchID)
	}

	m := matchFromRow(*row)
	now := database.Now()

	var resolved reconcile.MatchRecord
	if isDuplicate {
		resolved, err = reconcile.Confirm(m, now, resolvedBy)
	} else {
		resolved, err = reconcile.Dismiss(m, now, resolvedBy)
	}
	if err != nil {
		return err
	}

	// the transition and its consequence must land together: a CONFIRMED
	// match whose bank line is still in the books would double-count
	return database.WithTx(r.DB, func(tx *sql.Tx) error {
		if err := repository.NewMatchRepo(tx).Resolve(ctx, m.ID, string(resolved.Status), now, resolvedBy); err != nil {
			return err
		}
		if isDuplicate {
			// the bank line is the user's manual entry in disguise; keep it
			// out of promotion from now on
			if err := repository.NewBankTransactionRepo(tx).UpdateReviewStatus(ctx, m.BankTransactionID, string(reconcile.ReviewExcluded)); err != nil {
				return fmt.Errorf("exclude bank transaction %s: %w", m.BankTransactionID, err)
			}
		}
		return nil
	})
}

func (r *Reconciler) businessLock(businessID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	l, ok := r.locks[businessID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[businessID] = l
	}
	return l
}
