package repository

import (
	"context"
	"database/sql"
)

// BusinessRepo handles businesses.
type BusinessRepo struct{ db DB }

func NewBusinessRepo(db DB) *BusinessRepo { return &BusinessRepo{db: db} }

func (r *BusinessRepo) Insert(ctx context.Context, b Business) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO businesses(id, name, created_at) VALUES(?, ?, CURRENT_TIMESTAMP)
	`, b.ID, b.Name)
	return err
}

func (r *BusinessRepo) Get(ctx context.Context, id string) (*Business, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM businesses WHERE id = ?`, id)
	var b Business
	if err := row.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
