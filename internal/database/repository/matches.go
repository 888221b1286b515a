package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMatchNotResolvable is returned when a resolution targets a match that is
// missing or no longer UNRESOLVED.
var ErrMatchNotResolvable = errors.New("repository: match not found or already resolved")

// MatchFilters defines list filters.
type MatchFilters struct {
	BusinessID string
	Status     string
	Tier       string
}

// MatchRepo handles match records. The table is append-only: Insert and the
// guarded Resolve are the only writes, and nothing deletes.
type MatchRepo struct {
	db DB
}

func NewMatchRepo(db DB) *MatchRepo { return &MatchRepo{db: db} }

func (r *MatchRepo) Insert(ctx context.Context, m MatchRecord) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO match_records(
	 id, bank_transaction_id, ledger_entry_id, entry_kind, confidence, tier,
	 status, business_id, created_at, resolved_at, resolved_by)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.BankTransactionID, m.LedgerEntryID, m.EntryKind, m.Confidence,
		m.Tier, m.Status, m.BusinessID, m.CreatedAt, m.ResolvedAt, m.ResolvedBy)
	return err
}

func (r *MatchRepo) Get(ctx context.Context, id string) (*MatchRecord, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, bank_transaction_id, ledger_entry_id, entry_kind, confidence, tier,
	       status, business_id, created_at, resolved_at, resolved_by
	FROM match_records WHERE id = ?`, id)
	var m MatchRecord
	err := row.Scan(&m.ID, &m.BankTransactionID, &m.LedgerEntryID, &m.EntryKind,
		&m.Confidence, &m.Tier, &m.Status, &m.BusinessID, &m.CreatedAt, &m.ResolvedAt, &m.ResolvedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) List(ctx context.Context, f MatchFilters) ([]MatchRecord, error) {
	var where []string
	var args []interface{}

	if f.BusinessID != "" {
		where = append(where, "business_id = ?")
		args = append(args, f.BusinessID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Tier != "" {
		where = append(where, "tier = ?")
		args = append(args, f.Tier)
	}

	query := `SELECT id, bank_transaction_id, ledger_entry_id, entry_kind, confidence, tier,
	       status, business_id, created_at, resolved_at, resolved_by FROM match_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MatchRecord
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.BankTransactionID, &m.LedgerEntryID, &m.EntryKind,
			&m.Confidence, &m.Tier, &m.Status, &m.BusinessID, &m.CreatedAt, &m.ResolvedAt, &m.ResolvedBy); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListUnresolved returns the business's open matches, oldest first.
func (r *MatchRepo) ListUnresolved(ctx context.Context, businessID string) ([]MatchRecord, error) {
	return r.List(ctx, MatchFilters{BusinessID: businessID, Status: "UNRESOLVED"})
}

// Resolve applies a confirm/dismiss transition. The WHERE clause enforces the
// one-way state machine at the storage layer too: a resolved row never moves
// again.
func (r *MatchRepo) Resolve(ctx context.Context, id, status string, resolvedAt time.Time, resolvedBy string) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE match_records SET status = ?, resolved_at = ?, resolved_by = ?
	WHERE id = ? AND status = 'UNRESOLVED'
	`, status, resolvedAt, resolvedBy, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMatchNotResolvable, id)
	}
	return nil
}
