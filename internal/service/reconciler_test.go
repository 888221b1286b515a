package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomwrigg/taxfolio/internal/database"
	"github.com/tomwrigg/taxfolio/internal/database/repository"
	"github.com/tomwrigg/taxfolio/internal/reconcile"
)

const testBusiness = "biz-1"

func setupReconciler(t *testing.T) (*Reconciler, *repository.BankTransactionRepo, *repository.LedgerEntryRepo, *repository.MatchRepo) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	t.Log("migrations applied")

	ctx := context.Background()
	bizRepo := repository.NewBusinessRepo(db)
	require.NoError(t, bizRepo.Insert(ctx, repository.Business{ID: testBusiness, Name: "Tom's Plumbing"}))

	bank := repository.NewBankTransactionRepo(db)
	ledger := repository.NewLedgerEntryRepo(db)
	matches := repository.NewMatchRepo(db)
	return &Reconciler{DB: db, Bank: bank, Ledger: ledger, Matches: matches}, bank, ledger, matches
}

func seedTx(t *testing.T, repo *repository.BankTransactionRepo, id string, cents int64, desc string, date time.Time) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), repository.BankTransaction{
		ID:           id,
		BusinessID:   testBusiness,
		Date:         date,
		AmountCents:  cents,
		Description:  desc,
		ReviewStatus: string(reconcile.ReviewActive),
	}))
}

func seedEntry(t *testing.T, repo *repository.LedgerEntryRepo, id string, cents int64, desc, kind string, date time.Time) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), repository.LedgerEntry{
		ID:          id,
		BusinessID:  testBusiness,
		Date:        date,
		AmountCents: cents,
		Description: desc,
		Kind:        kind,
	}))
}

func TestDetectAndQueue(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, bank, ledger, matches := setupReconciler(t)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTx(t, bank, "tx-exact", -4500, "TESCO STORES 1234", day)
	seedTx(t, bank, "tx-possible", -8999, "AMZN MKTP UK", day)
	seedTx(t, bank, "tx-nomatch", -10000, "RENT", day)
	seedEntry(t, ledger, "exp-exact", 4500, "Tesco Stores 1234.", "EXPENSE", day)
	seedEntry(t, ledger, "exp-possible", 8999, "Amazon Marketplace UK", "EXPENSE", day)
	seedEntry(t, ledger, "exp-far", 9700, "Rent", "EXPENSE", day.AddDate(0, 0, 3))

	summary, err := rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Transactions)
	require.Equal(t, 2, summary.Detected)
	require.Equal(t, 2, summary.Queued)
	require.Equal(t, 0, summary.AlreadyQueued)
	t.Log("first pass queued matches")

	open, err := matches.ListUnresolved(ctx, testBusiness)
	require.NoError(t, err)
	require.Len(t, open, 2)

	byTx := map[string]repository.MatchRecord{}
	for _, m := range open {
		byTx[m.BankTransactionID] = m
	}
	require.Equal(t, "EXACT", byTx["tx-exact"].Tier)
	require.Equal(t, 1.0, byTx["tx-exact"].Confidence)
	require.Equal(t, "exp-exact", byTx["tx-exact"].LedgerEntryID)
	require.Equal(t, "POSSIBLE", byTx["tx-possible"].Tier)
	require.Equal(t, 0.30, byTx["tx-possible"].Confidence)

	// second pass finds the same pairs but queues nothing new
	summary, err = rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Detected)
	require.Equal(t, 0, summary.Queued)
	require.Equal(t, 2, summary.AlreadyQueued)

	open, err = matches.ListUnresolved(ctx, testBusiness)
	require.NoError(t, err)
	require.Len(t, open, 2)
	t.Log("rerun is idempotent")
}

func TestDecideConfirm(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, bank, ledger, matches := setupReconciler(t)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTx(t, bank, "tx1", -4500, "tesco stores", day)
	seedEntry(t, ledger, "e1", 4500, "tesco stores", "EXPENSE", day)

	_, err := rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	open, err := matches.ListUnresolved(ctx, testBusiness)
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, rec.Decide(ctx, open[0].ID, true, "tom"))

	m, err := matches.Get(ctx, open[0].ID)
	require.NoError(t, err)
	require.Equal(t, "CONFIRMED", m.Status)
	require.NotNil(t, m.ResolvedAt)
	require.Equal(t, "tom", *m.ResolvedBy)

	// the confirmed bank line is excluded from the books going forward
	tx, err := bank.Get(ctx, "tx1")
	require.NoError(t, err)
	require.Equal(t, "EXCLUDED", tx.ReviewStatus)

	// and the next pass skips it entirely
	summary, err := rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Detected)

	// no reopening a resolved match
	require.Error(t, rec.Decide(ctx, open[0].ID, false, "tom"))
	t.Log("confirm flow complete")
}

func TestDecideDismiss(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, bank, ledger, matches := setupReconciler(t)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTx(t, bank, "tx1", -4500, "tesco stores", day)
	seedEntry(t, ledger, "e1", 4500, "tesco stores", "EXPENSE", day)

	_, err := rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	open, err := matches.ListUnresolved(ctx, testBusiness)
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, rec.Decide(ctx, open[0].ID, false, "tom"))

	m, err := matches.Get(ctx, open[0].ID)
	require.NoError(t, err)
	require.Equal(t, "DISMISSED", m.Status)

	// dismissal keeps the transaction in the books
	tx, err := bank.Get(ctx, "tx1")
	require.NoError(t, err)
	require.Equal(t, "ACTIVE", tx.ReviewStatus)

	// a later pass may flag the pair again: dismissed records do not block
	summary, err := rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Detected)
	require.Equal(t, 1, summary.Queued)

	all, err := matches.List(ctx, repository.MatchFilters{BusinessID: testBusiness})
	require.NoError(t, err)
	require.Len(t, all, 2) // dismissed row retained, fresh row queued
	t.Log("dismiss flow complete")
}

func TestDecideConfirmIsAtomic(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, bank, ledger, matches := setupReconciler(t)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTx(t, bank, "tx1", -4500, "tesco stores", day)
	seedEntry(t, ledger, "e1", 4500, "tesco stores", "EXPENSE", day)

	_, err := rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	open, err := matches.ListUnresolved(ctx, testBusiness)
	require.NoError(t, err)
	require.Len(t, open, 1)

	// pull the bank row out from under the confirmation so its second write
	// fails after the status transition succeeded
	_, err = rec.DB.ExecContext(ctx, `PRAGMA foreign_keys=OFF`)
	require.NoError(t, err)
	_, err = rec.DB.ExecContext(ctx, `DELETE FROM bank_transactions WHERE id = 'tx1'`)
	require.NoError(t, err)

	require.Error(t, rec.Decide(ctx, open[0].ID, true, "tom"))

	// the failed exclusion rolled the transition back with it
	m, err := matches.Get(ctx, open[0].ID)
	require.NoError(t, err)
	require.Equal(t, "UNRESOLVED", m.Status)
	require.Nil(t, m.ResolvedAt)
	require.Nil(t, m.ResolvedBy)
	t.Log("confirm left no partial state")
}

func TestDetectAndQueueSerializesPerBusiness(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rec, bank, ledger, matches := setupReconciler(t)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTx(t, bank, "tx1", -4500, "tesco stores", day)
	seedEntry(t, ledger, "e1", 4500, "tesco stores", "EXPENSE", day)

	// overlapping passes for one business must not interleave between the
	// de-dup read and the insert
	const runs = 4
	errs := make(chan error, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rec.DetectAndQueue(ctx, testBusiness)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	open, err := matches.ListUnresolved(ctx, testBusiness)
	require.NoError(t, err)
	require.Len(t, open, 1)
	t.Log("concurrent passes queued no duplicates")
}

func TestDetectAndQueueSkipsLinkedEntry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, bank, ledger, matches := setupReconciler(t)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTx(t, bank, "tx1", 12000, "consulting fee", day)

	txID := "tx1"
	require.NoError(t, ledger.Insert(ctx, repository.LedgerEntry{
		ID:                      "inc1",
		BusinessID:              testBusiness,
		Date:                    day,
		AmountCents:             12000,
		Description:             "consulting fee",
		Kind:                    "INCOME",
		LinkedBankTransactionID: &txID,
	}))

	summary, err := rec.DetectAndQueue(ctx, testBusiness)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Detected)

	open, err := matches.ListUnresolved(ctx, testBusiness)
	require.NoError(t, err)
	require.Empty(t, open)
}
