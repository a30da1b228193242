package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

const budgetSelect = `
SELECT b.id, b.user_id, b.category_id, b.budget_type, b.amount_cents,
       b.month, b.year, b.created_at, b.updated_at,
       c.id, c.name, c.created_at, c.updated_at
FROM budgets b
LEFT JOIN categories c ON c.id = b.category_id`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var (
		b                core.Budget
		catID, catName   sql.NullString
		created, updated sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Type, &b.Amount.Cents,
		&b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt,
		&catID, &catName, &created, &updated,
	)
	if err != nil {
		return core.Budget{}, err
	}
	if catID.Valid {
		b.Category = &core.Category{
			ID:        catID.String,
			Name:      catName.String,
			CreatedAt: created.Time,
			UpdatedAt: updated.Time,
		}
	}
	return b, nil
}

// ListBudgets returns the user's budgets for one month/year period.
func (r *Repository) ListBudgets(ctx context.Context, userID string, month, year int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		budgetSelect+" WHERE b.user_id = ? AND b.month = ? AND b.year = ? ORDER BY b.budget_type, b.created_at",
		userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *Repository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		budgetSelect+" WHERE b.id = ? AND b.user_id = ?", id, userID)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// UpsertBudget sets or updates the budget for the (user, month, year,
// category, type) key. The conflict clause rides on the table's unique
// index, so concurrent upserts for the same key can never produce
// duplicate rows.
func (r *Repository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = newID()
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt

	var id string
	err := r.db.QueryRowContext(ctx, `
INSERT INTO budgets (id, user_id, category_id, budget_type, amount_cents, month, year, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, month, year, category_id, budget_type)
DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at
RETURNING id`,
		b.ID, b.UserID, b.CategoryID, b.Type, b.Amount.Cents, b.Month, b.Year, b.CreatedAt, b.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	return r.GetBudget(ctx, b.UserID, id)
}

func (r *Repository) UpdateBudget(ctx context.Context, userID, id string, upd core.BudgetUpdate) (core.Budget, error) {
	b, err := r.GetBudget(ctx, userID, id)
	if err != nil {
		return core.Budget{}, err
	}
	if upd.Amount != nil {
		b.Amount = *upd.Amount
	}
	if upd.Month != nil {
		b.Month = *upd.Month
	}
	if upd.Year != nil {
		b.Year = *upd.Year
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.UpdatedAt = now()

	_, err = r.db.ExecContext(ctx,
		"UPDATE budgets SET amount_cents = ?, month = ?, year = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		b.Amount.Cents, b.Month, b.Year, b.UpdatedAt, id, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
