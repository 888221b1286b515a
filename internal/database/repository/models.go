package repository

import "time"

// Business represents a business row. All bookkeeping data is scoped to one.
type Business struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// BankTransaction represents an imported bank line. AmountCents is signed:
// positive inbound, negative outbound.
type BankTransaction struct {
	ID              string
	BusinessID      string
	Date            time.Time
	AmountCents     int64
	Description     string
	ReviewStatus    string
	LinkedIncomeID  *string
	LinkedExpenseID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LedgerEntry represents a manually entered income or expense row.
// AmountCents is unsigned; Kind is INCOME or EXPENSE.
type LedgerEntry struct {
	ID                      string
	BusinessID              string
	Date                    time.Time
	AmountCents             int64
	Description             string
	Kind                    string
	LinkedBankTransactionID *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// MatchRecord represents a detected duplicate pairing queued for review.
type MatchRecord struct {
	ID                string
	BankTransactionID string
	LedgerEntryID     string
	EntryKind         string
	Confidence        float64
	Tier              string
	Status            string
	BusinessID        string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
	ResolvedBy        *string
}
