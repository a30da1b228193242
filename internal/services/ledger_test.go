package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type fakeStore struct {
	accounts     map[string]core.Account
	categories   map[string]core.Category
	transactions map[string]core.Transaction
	budgets      map[string]core.Budget
	nextID       int

	failListTransactions bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:     map[string]core.Account{},
		categories:   map[string]core.Category{},
		transactions: map[string]core.Transaction{},
		budgets:      map[string]core.Budget{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	out := []core.Account{}
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAccount(_ context.Context, userID, id string) (core.Account, error) {
	a, ok := f.accounts[id]
	if !ok || a.UserID != userID {
		return core.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	a.ID = f.id()
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeStore) UpdateAccount(ctx context.Context, userID, id string, upd core.AccountUpdate) (core.Account, error) {
	a, err := f.GetAccount(ctx, userID, id)
	if err != nil {
		return core.Account{}, err
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Type != nil {
		a.Type = *upd.Type
	}
	f.accounts[id] = a
	return a, nil
}

func (f *fakeStore) DeleteAccount(ctx context.Context, userID, id string) error {
	if _, err := f.GetAccount(ctx, userID, id); err != nil {
		return err
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeStore) ListCategories(context.Context) ([]core.Category, error) {
	out := []core.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetCategory(_ context.Context, id string) (core.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return core.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	c.ID = f.id()
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, id string, upd core.CategoryUpdate) (core.Category, error) {
	c, err := f.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	f.categories[id] = c
	return c, nil
}

func (f *fakeStore) DeleteCategory(ctx context.Context, id string) error {
	if _, err := f.GetCategory(ctx, id); err != nil {
		return err
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	if f.failListTransactions {
		return nil, errors.New("boom")
	}
	out := []core.Transaction{}
	for _, t := range f.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = f.id()
	f.transactions[t.ID] = t
	return t, nil
}

func (f *fakeStore) UpdateTransaction(ctx context.Context, userID, id string, upd core.TransactionUpdate) (core.Transaction, error) {
	t, err := f.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	f.transactions[id] = t
	return t, nil
}

func (f *fakeStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	if _, err := f.GetTransaction(ctx, userID, id); err != nil {
		return err
	}
	delete(f.transactions, id)
	return nil
}

func (f *fakeStore) ListBudgets(_ context.Context, userID string, month, year int) ([]core.Budget, error) {
	out := []core.Budget{}
	for _, b := range f.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetBudget(_ context.Context, userID, id string) (core.Budget, error) {
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return core.Budget{}, storage.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	for id, existing := range f.budgets {
		if existing.UserID == b.UserID && existing.Month == b.Month &&
			existing.Year == b.Year && existing.CategoryID == b.CategoryID &&
			existing.Type == b.Type {
			existing.Amount = b.Amount
			f.budgets[id] = existing
			return existing, nil
		}
	}
	b.ID = f.id()
	f.budgets[b.ID] = b
	return b, nil
}

func (f *fakeStore) UpdateBudget(ctx context.Context, userID, id string, upd core.BudgetUpdate) (core.Budget, error) {
	b, err := f.GetBudget(ctx, userID, id)
	if err != nil {
		return core.Budget{}, err
	}
	if upd.Amount != nil {
		b.Amount = *upd.Amount
	}
	f.budgets[id] = b
	return b, nil
}

func (f *fakeStore) DeleteBudget(ctx context.Context, userID, id string) error {
	if _, err := f.GetBudget(ctx, userID, id); err != nil {
		return err
	}
	delete(f.budgets, id)
	return nil
}

type fakePublisher struct {
	events []string
	err    error
}

func (p *fakePublisher) PublishTransactionEvent(_ context.Context, id, action string) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, action+":"+id)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func validTransaction(userID string) core.Transaction {
	return core.Transaction{
		UserID:      userID,
		Amount:      core.Money{Cents: 1500},
		Date:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Description: "groceries",
		CategoryID:  "cat-1",
		AccountID:   "acc-1",
		Type:        core.Expense,
	}
}

func TestCreateTransactionPublishesEvent(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	ledger := NewLedger(store, pub, testLogger())

	created, err := ledger.CreateTransaction(context.Background(), validTransaction("u1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0] != amqp.ActionCreated+":"+created.ID {
		t.Fatalf("expected created event, got %v", pub.events)
	}
}

func TestCreateTransactionSucceedsWhenPublishFails(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	ledger := NewLedger(store, pub, testLogger())

	created, err := ledger.CreateTransaction(context.Background(), validTransaction("u1"))
	if err != nil {
		t.Fatalf("publish failure must not fail the request, got %v", err)
	}
	if _, err := store.GetTransaction(context.Background(), "u1", created.ID); err != nil {
		t.Fatalf("record should still be stored: %v", err)
	}
}

func TestCreateTransactionWithNilPublisher(t *testing.T) {
	ledger := NewLedger(newFakeStore(), nil, testLogger())
	if _, err := ledger.CreateTransaction(context.Background(), validTransaction("u1")); err != nil {
		t.Fatalf("nil publisher must be tolerated, got %v", err)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	ledger := NewLedger(store, pub, testLogger())

	bad := validTransaction("u1")
	bad.Amount = core.Money{}
	if _, err := ledger.CreateTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(store.transactions) != 0 {
		t.Fatal("invalid transaction must not be stored")
	}
	if len(pub.events) != 0 {
		t.Fatal("invalid transaction must not publish")
	}
}

func TestDeleteTransactionPublishesEvent(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	ledger := NewLedger(store, pub, testLogger())

	created, err := ledger.CreateTransaction(context.Background(), validTransaction("u1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ledger.DeleteTransaction(context.Background(), "u1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := amqp.ActionDeleted + ":" + created.ID
	if pub.events[len(pub.events)-1] != want {
		t.Fatalf("expected %q event, got %v", want, pub.events)
	}
}

func TestDeleteMissingTransactionDoesNotPublish(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	ledger := NewLedger(store, pub, testLogger())

	if err := ledger.DeleteTransaction(context.Background(), "u1", "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event expected, got %v", pub.events)
	}
}

func TestSetBudgetValidates(t *testing.T) {
	ledger := NewLedger(newFakeStore(), nil, testLogger())

	_, err := ledger.SetBudget(context.Background(), core.Budget{
		UserID: "u1", Type: core.OverallBudget,
		Amount: core.Money{Cents: 100000}, Month: 13, Year: 2025,
	})
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestSetBudgetTwiceUpdatesInPlace(t *testing.T) {
	ledger := NewLedger(newFakeStore(), nil, testLogger())
	ctx := context.Background()

	b := core.Budget{
		UserID: "u1", Type: core.OverallBudget,
		Amount: core.Money{Cents: 100000}, Month: 4, Year: 2025,
	}
	first, err := ledger.SetBudget(ctx, b)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	b.Amount = core.Money{Cents: 200000}
	second, err := ledger.SetBudget(ctx, b)
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected in-place update, got new id %s", second.ID)
	}
	if second.Amount.Cents != 200000 {
		t.Fatalf("amount = %d, want 200000", second.Amount.Cents)
	}
}

func TestDashboardAggregates(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, nil, testLogger())
	ctx := context.Background()

	for _, cents := range []int64{1000, 2000} {
		txn := validTransaction("u1")
		txn.Amount = core.Money{Cents: cents}
		if _, err := ledger.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	income := validTransaction("u1")
	income.Type = core.Income
	income.Amount = core.Money{Cents: 50000}
	if _, err := ledger.CreateTransaction(ctx, income); err != nil {
		t.Fatalf("create income: %v", err)
	}

	now := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	dash, err := ledger.Dashboard(ctx, "u1", 0, now)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Year != 2025 {
		t.Fatalf("year defaults to now's year, got %d", dash.Year)
	}
	if len(dash.Trend) != 12 {
		t.Fatalf("trend must have 12 points, got %d", len(dash.Trend))
	}
	if dash.Trend[3].Total.Cents != 3000 {
		t.Fatalf("April total = %d, want 3000", dash.Trend[3].Total.Cents)
	}
	if dash.Summary.CurrentMonth.Cents != 3000 {
		t.Fatalf("current month = %d, want 3000", dash.Summary.CurrentMonth.Cents)
	}
	if len(dash.Categories) != 1 || dash.Categories[0].Total.Cents != 3000 {
		t.Fatalf("category breakdown wrong: %+v", dash.Categories)
	}
}

func TestAccountActivityRequiresOwnedAccount(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, nil, testLogger())

	if _, err := ledger.AccountActivity(context.Background(), "u1", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBudgetStatusesScopeSpendingByType(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, nil, testLogger())
	ctx := context.Background()

	food := validTransaction("u1")
	food.CategoryID = "cat-food"
	food.Amount = core.Money{Cents: 30000}
	rent := validTransaction("u1")
	rent.CategoryID = "cat-rent"
	rent.Amount = core.Money{Cents: 90000}
	for _, txn := range []core.Transaction{food, rent} {
		if _, err := ledger.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if _, err := ledger.SetBudget(ctx, core.Budget{
		UserID: "u1", Type: core.OverallBudget,
		Amount: core.Money{Cents: 200000}, Month: 4, Year: 2025,
	}); err != nil {
		t.Fatalf("set overall: %v", err)
	}
	if _, err := ledger.SetBudget(ctx, core.Budget{
		UserID: "u1", Type: core.CategoryBudget, CategoryID: "cat-food",
		Amount: core.Money{Cents: 40000}, Month: 4, Year: 2025,
	}); err != nil {
		t.Fatalf("set category: %v", err)
	}

	now := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	reports, err := ledger.BudgetStatuses(ctx, "u1", 4, 2025, now)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	for _, r := range reports {
		switch r.Budget.Type {
		case core.OverallBudget:
			if r.Status.Spent.Cents != 120000 {
				t.Errorf("overall spent = %d, want 120000", r.Status.Spent.Cents)
			}
		case core.CategoryBudget:
			if r.Status.Spent.Cents != 30000 {
				t.Errorf("category spent = %d, want 30000", r.Status.Spent.Cents)
			}
		}
	}
}

func TestDashboardPropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.failListTransactions = true
	ledger := NewLedger(store, nil, testLogger())

	if _, err := ledger.Dashboard(context.Background(), "u1", 2025, time.Now()); err == nil {
		t.Fatal("expected error from store")
	}
}
