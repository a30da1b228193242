package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// Transaction reads join the referenced category and account rows so the
// API can return resolved references, mirroring a document-store populate.
const transactionSelect = `
SELECT t.id, t.user_id, t.amount_cents, t.date, t.description,
       t.category_id, t.account_id, t.transaction_type, t.created_at, t.updated_at,
       c.id, c.name, c.created_at, c.updated_at,
       a.id, a.user_id, a.name, a.type, a.created_at, a.updated_at
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN accounts a ON a.id = t.account_id`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t   core.Transaction
		cat struct {
			id, name         sql.NullString
			created, updated sql.NullTime
		}
		acc struct {
			id, userID, name, typ sql.NullString
			created, updated      sql.NullTime
		}
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount.Cents, &t.Date, &t.Description,
		&t.CategoryID, &t.AccountID, &t.Type, &t.CreatedAt, &t.UpdatedAt,
		&cat.id, &cat.name, &cat.created, &cat.updated,
		&acc.id, &acc.userID, &acc.name, &acc.typ, &acc.created, &acc.updated,
	)
	if err != nil {
		return core.Transaction{}, err
	}
	if cat.id.Valid {
		t.Category = &core.Category{
			ID:        cat.id.String,
			Name:      cat.name.String,
			CreatedAt: cat.created.Time,
			UpdatedAt: cat.updated.Time,
		}
	}
	if acc.id.Valid {
		t.Account = &core.Account{
			ID:        acc.id.String,
			UserID:    acc.userID.String,
			Name:      acc.name.String,
			Type:      core.AccountType(acc.typ.String),
			CreatedAt: acc.created.Time,
			UpdatedAt: acc.updated.Time,
		}
	}
	return t, nil
}

// ListTransactions returns the user's transactions sorted by date
// descending, with category and account references resolved.
func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		transactionSelect+" WHERE t.user_id = ? ORDER BY t.date DESC, t.created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		transactionSelect+" WHERE t.id = ? AND t.user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = newID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.ExecContext(ctx, `
INSERT INTO transactions (id, user_id, amount_cents, date, description,
	category_id, account_id, transaction_type, export_status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Amount.Cents, t.Date, t.Description,
		t.CategoryID, t.AccountID, t.Type, ExportPending, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	// Return the populated record, as the create response embeds the
	// resolved category and account.
	return r.GetTransaction(ctx, t.UserID, t.ID)
}

func (r *Repository) UpdateTransaction(ctx context.Context, userID, id string, upd core.TransactionUpdate) (core.Transaction, error) {
	t, err := r.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.CategoryID != nil {
		t.CategoryID = *upd.CategoryID
	}
	if upd.AccountID != nil {
		t.AccountID = *upd.AccountID
	}
	if upd.Type != nil {
		t.Type = *upd.Type
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.UpdatedAt = now()

	// The row goes back to pending so the export feed picks up the change.
	_, err = r.db.ExecContext(ctx, `
UPDATE transactions SET amount_cents = ?, date = ?, description = ?,
	category_id = ?, account_id = ?, transaction_type = ?, export_status = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
		t.Amount.Cents, t.Date, t.Description,
		t.CategoryID, t.AccountID, t.Type, ExportPending, t.UpdatedAt, id, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return r.GetTransaction(ctx, userID, id)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTransactionByID looks a transaction up without a user filter. Change
// events carry only the record id, so the export worker resolves rows here.
func (r *Repository) GetTransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+" WHERE t.id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// ListPendingExport returns transactions awaiting export, oldest first.
func (r *Repository) ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		transactionSelect+" WHERE t.export_status = ? ORDER BY t.updated_at LIMIT ?",
		ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	txns := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *Repository) markExport(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET export_status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("mark export %s: %w", status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark export rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkExported(ctx context.Context, id string) error {
	return r.markExport(ctx, id, ExportDone)
}

func (r *Repository) MarkExportError(ctx context.Context, id string) error {
	return r.markExport(ctx, id, ExportError)
}
