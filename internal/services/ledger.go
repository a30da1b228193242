// Package services orchestrates domain operations across storage and the
// event feed. Handlers talk to the Ledger, never to the repository directly.
package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// Store is the persistence surface the ledger needs.
type Store interface {
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	GetAccount(ctx context.Context, userID, id string) (core.Account, error)
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, userID, id string, upd core.AccountUpdate) (core.Account, error)
	DeleteAccount(ctx context.Context, userID, id string) error

	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, id string, upd core.CategoryUpdate) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, upd core.TransactionUpdate) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error

	ListBudgets(ctx context.Context, userID string, month, year int) ([]core.Budget, error)
	GetBudget(ctx context.Context, userID, id string) (core.Budget, error)
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, userID, id string, upd core.BudgetUpdate) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, id string) error
}

// EventPublisher emits transaction change notifications. Publishing is best
// effort: a failure is logged and never fails the caller's request.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id, action string) error
}

type Ledger struct {
	store     Store
	publisher EventPublisher
	logger    *log.Logger
}

func NewLedger(store Store, publisher EventPublisher, logger *log.Logger) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Accounts

func (l *Ledger) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	return l.store.ListAccounts(ctx, userID)
}

func (l *Ledger) GetAccount(ctx context.Context, userID, id string) (core.Account, error) {
	return l.store.GetAccount(ctx, userID, id)
}

func (l *Ledger) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return l.store.CreateAccount(ctx, a)
}

func (l *Ledger) UpdateAccount(ctx context.Context, userID, id string, upd core.AccountUpdate) (core.Account, error) {
	return l.store.UpdateAccount(ctx, userID, id, upd)
}

func (l *Ledger) DeleteAccount(ctx context.Context, userID, id string) error {
	return l.store.DeleteAccount(ctx, userID, id)
}

// Categories

func (l *Ledger) ListCategories(ctx context.Context) ([]core.Category, error) {
	return l.store.ListCategories(ctx)
}

func (l *Ledger) GetCategory(ctx context.Context, id string) (core.Category, error) {
	return l.store.GetCategory(ctx, id)
}

func (l *Ledger) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return l.store.CreateCategory(ctx, c)
}

func (l *Ledger) UpdateCategory(ctx context.Context, id string, upd core.CategoryUpdate) (core.Category, error) {
	return l.store.UpdateCategory(ctx, id, upd)
}

func (l *Ledger) DeleteCategory(ctx context.Context, id string) error {
	return l.store.DeleteCategory(ctx, id)
}

// Transactions

func (l *Ledger) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx, userID)
}

func (l *Ledger) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, userID, id)
}

// CreateTransaction saves the record locally, then publishes a change event.
// The local write is the source of truth; a publish failure only logs.
func (l *Ledger) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := l.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	l.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, userID, id string, upd core.TransactionUpdate) (core.Transaction, error) {
	updated, err := l.store.UpdateTransaction(ctx, userID, id, upd)
	if err != nil {
		return core.Transaction{}, err
	}
	l.publish(ctx, updated.ID, amqp.ActionUpdated)
	return updated, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := l.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	l.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (l *Ledger) publish(ctx context.Context, id, action string) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishTransactionEvent(ctx, id, action); err != nil {
		l.logger.ErrorContext(ctx, "failed to publish transaction event",
			log.FieldTxnID, id,
			log.FieldOperation, action,
			log.FieldError, err)
	}
}

// Budgets

// ListBudgets requires a month/year period; the resource has no unscoped
// listing.
func (l *Ledger) ListBudgets(ctx context.Context, userID string, month, year int) ([]core.Budget, error) {
	return l.store.ListBudgets(ctx, userID, month, year)
}

func (l *Ledger) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	return l.store.GetBudget(ctx, userID, id)
}

// SetBudget creates or replaces the budget for its period key. Setting the
// same key twice updates the amount in place.
func (l *Ledger) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := l.store.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	l.logger.InfoContext(ctx, "budget set",
		log.FieldBudgetID, saved.ID,
		log.FieldMonth, saved.Month,
		log.FieldYear, saved.Year,
		log.FieldAmountCents, saved.Amount.Cents)
	return saved, nil
}

func (l *Ledger) UpdateBudget(ctx context.Context, userID, id string, upd core.BudgetUpdate) (core.Budget, error) {
	return l.store.UpdateBudget(ctx, userID, id, upd)
}

func (l *Ledger) DeleteBudget(ctx context.Context, userID, id string) error {
	return l.store.DeleteBudget(ctx, userID, id)
}

// Dashboard reads

// DashboardSummary is the aggregate payload behind the dashboard view.
type DashboardSummary struct {
	Year       int                      `json:"year"`
	Years      []int                    `json:"years"`
	Trend      []report.TrendPoint      `json:"monthly_trend"`
	Summary    report.TrendSummary      `json:"summary"`
	Categories []report.CategorySummary `json:"categories"`
}

func (l *Ledger) Dashboard(ctx context.Context, userID string, year int, now time.Time) (DashboardSummary, error) {
	txns, err := l.store.ListTransactions(ctx, userID)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("load transactions: %w", err)
	}
	if year == 0 {
		year = now.Year()
	}
	trend := report.MonthlyTrend(txns, year)
	return DashboardSummary{
		Year:       year,
		Years:      report.Years(txns),
		Trend:      trend,
		Summary:    report.Summarize(trend, year, now),
		Categories: report.CategoryBreakdown(yearExpenses(txns, year)),
	}, nil
}

// AccountActivity folds an account's history into balance and totals. The
// account must exist for the requesting user.
func (l *Ledger) AccountActivity(ctx context.Context, userID, accountID string) (report.AccountActivity, error) {
	if _, err := l.store.GetAccount(ctx, userID, accountID); err != nil {
		return report.AccountActivity{}, err
	}
	txns, err := l.store.ListTransactions(ctx, userID)
	if err != nil {
		return report.AccountActivity{}, fmt.Errorf("load transactions: %w", err)
	}
	return report.AccountBalance(txns, accountID), nil
}

// BudgetReport is one budget of the period with its comparison figures.
type BudgetReport struct {
	Budget core.Budget         `json:"budget"`
	Status report.BudgetStatus `json:"status"`
}

// BudgetStatuses compares each budget of the period against the period's
// expenses. Category budgets measure only their category's spending; the
// overall budget measures all expenses of the month.
func (l *Ledger) BudgetStatuses(ctx context.Context, userID string, month, year int, now time.Time) ([]BudgetReport, error) {
	budgets, err := l.store.ListBudgets(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	txns, err := l.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	reports := []BudgetReport{}
	for _, b := range budgets {
		var spent core.Money
		for _, t := range txns {
			if t.Type != core.Expense || int(t.Date.Month()) != month || t.Date.Year() != year {
				continue
			}
			if b.Type == core.CategoryBudget && t.CategoryID != b.CategoryID {
				continue
			}
			spent.Cents += t.Amount.Cents
		}
		amount := b.Amount
		reports = append(reports, BudgetReport{
			Budget: b,
			Status: report.BudgetComparison(spent, &amount, now),
		})
	}
	return reports, nil
}

func yearExpenses(txns []core.Transaction, year int) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Date.Year() == year {
			out = append(out, t)
		}
	}
	return out
}
