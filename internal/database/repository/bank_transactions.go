package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// BankTransactionRepo handles imported bank lines.
type BankTransactionRepo struct {
	db DB
}

func NewBankTransactionRepo(db DB) *BankTransactionRepo { return &BankTransactionRepo{db: db} }

func (r *BankTransactionRepo) Insert(ctx context.Context, t BankTransaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO bank_transactions(
	 id, business_id, date, amount_cents, description, review_status,
	 linked_income_id, linked_expense_id, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.ID, t.BusinessID, t.Date.Format(time.DateOnly), t.AmountCents, t.Description,
		t.ReviewStatus, t.LinkedIncomeID, t.LinkedExpenseID)
	return err
}

func (r *BankTransactionRepo) Get(ctx context.Context, id string) (*BankTransaction, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, business_id, date, amount_cents, description, review_status,
	       linked_income_id, linked_expense_id, created_at, updated_at
	FROM bank_transactions WHERE id = ?`, id)
	var t BankTransaction
	if err := scanBankTransaction(row.Scan, &t); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *BankTransactionRepo) ListByBusiness(ctx context.Context, businessID string) ([]BankTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, business_id, date, amount_cents, description, review_status,
	       linked_income_id, linked_expense_id, created_at, updated_at
	FROM bank_transactions WHERE business_id = ? ORDER BY date ASC, id ASC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BankTransaction
	for rows.Next() {
		var t BankTransaction
		if err := scanBankTransaction(rows.Scan, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *BankTransactionRepo) UpdateReviewStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bank_transactions SET review_status = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("bank transaction %s not found", id)
	}
	return nil
}

func scanBankTransaction(scan func(dest ...any) error, t *BankTransaction) error {
	return scan(&t.ID, &t.BusinessID, &t.Date, &t.AmountCents, &t.Description,
		&t.ReviewStatus, &t.LinkedIncomeID, &t.LinkedExpenseID, &t.CreatedAt, &t.UpdatedAt)
}
