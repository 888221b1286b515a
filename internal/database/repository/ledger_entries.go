package repository

import (
	"context"
	"database/sql"
	"time"
)

// LedgerEntryRepo handles manually entered income and expense rows.
type LedgerEntryRepo struct {
	db DB
}

func NewLedgerEntryRepo(db DB) *LedgerEntryRepo { return &LedgerEntryRepo{db: db} }

func (r *LedgerEntryRepo) Insert(ctx context.Context, e LedgerEntry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO ledger_entries(
	 id, business_id, date, amount_cents, description, kind,
	 linked_bank_transaction_id, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		e.ID, e.BusinessID, e.Date.Format(time.DateOnly), e.AmountCents, e.Description,
		e.Kind, e.LinkedBankTransactionID)
	return err
}

func (r *LedgerEntryRepo) Get(ctx context.Context, id string) (*LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, business_id, date, amount_cents, description, kind,
	       linked_bank_transaction_id, created_at, updated_at
	FROM ledger_entries WHERE id = ?`, id)
	var e LedgerEntry
	err := row.Scan(&e.ID, &e.BusinessID, &e.Date, &e.AmountCents, &e.Description,
		&e.Kind, &e.LinkedBankTransactionID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ListByBusiness returns the business's entries of one kind, or of every kind
// when kind is empty.
func (r *LedgerEntryRepo) ListByBusiness(ctx context.Context, businessID, kind string) ([]LedgerEntry, error) {
	query := `
	SELECT id, business_id, date, amount_cents, description, kind,
	       linked_bank_transaction_id, created_at, updated_at
	FROM ledger_entries WHERE business_id = ?`
	args := []interface{}{businessID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Date, &e.AmountCents, &e.Description,
			&e.Kind, &e.LinkedBankTransactionID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
