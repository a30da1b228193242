package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

const accountColumns = "id, user_id, name, type, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) GetAccount(ctx context.Context, userID, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ? AND user_id = ?", id, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.ID = newID()
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (id, user_id, name, type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.UserID, a.Name, a.Type, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, userID, id string, upd core.AccountUpdate) (core.Account, error) {
	a, err := r.GetAccount(ctx, userID, id)
	if err != nil {
		return core.Account{}, err
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Type != nil {
		a.Type = *upd.Type
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	a.UpdatedAt = now()

	_, err = r.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, type = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		a.Name, a.Type, a.UpdatedAt, id, userID)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	return a, nil
}

// DeleteAccount removes the account and all transactions referencing it in
// one SQL transaction, so a crash cannot leave orphaned dependents behind.
func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM transactions WHERE account_id = ? AND user_id = ?", id, userID); err != nil {
			return fmt.Errorf("delete account transactions: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			"DELETE FROM accounts WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete account rows affected: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
