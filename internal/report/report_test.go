package report

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func txn(typ core.TransactionType, cents int64, date time.Time, categoryID, accountID string) core.Transaction {
	return core.Transaction{
		Amount:     core.Money{Cents: cents},
		Date:       date,
		Type:       typ,
		CategoryID: categoryID,
		AccountID:  accountID,
	}
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyTrendAlwaysTwelveEntries(t *testing.T) {
	for _, txns := range [][]core.Transaction{
		nil,
		{txn(core.Expense, 100, date(2025, 1, 5), "c", "a")},
	} {
		points := MonthlyTrend(txns, 2025)
		if len(points) != 12 {
			t.Fatalf("expected 12 entries, got %d", len(points))
		}
		if points[0].Label != "Jan" || points[11].Label != "Dec" {
			t.Fatalf("unexpected labels %q..%q", points[0].Label, points[11].Label)
		}
	}
}

func TestMonthlyTrendTotalsMatchInput(t *testing.T) {
	txns := []core.Transaction{
		txn(core.Expense, 1000, date(2025, 1, 10), "c1", "a1"),
		txn(core.Expense, 2500, date(2025, 1, 20), "c2", "a1"),
		txn(core.Expense, 700, date(2025, 6, 2), "c1", "a2"),
		txn(core.Income, 99999, date(2025, 3, 1), "c1", "a1"),  // income ignored
		txn(core.Expense, 400, date(2024, 6, 2), "c1", "a1"),   // wrong year
		txn(core.Transfer, 123, date(2025, 6, 15), "c1", "a1"), // transfer ignored
	}

	points := MonthlyTrend(txns, 2025)

	var sum int64
	for _, p := range points {
		sum += p.Total.Cents
	}
	if sum != 4200 {
		t.Fatalf("trend sum = %d, want 4200", sum)
	}
	if points[0].Total.Cents != 3500 {
		t.Fatalf("Jan = %d, want 3500", points[0].Total.Cents)
	}
	if points[5].Total.Cents != 700 {
		t.Fatalf("Jun = %d, want 700", points[5].Total.Cents)
	}
	for i, p := range points {
		if i != 0 && i != 5 && p.Total.Cents != 0 {
			t.Fatalf("month %d not zero-filled: %d", i+1, p.Total.Cents)
		}
	}
}

func TestSummarize(t *testing.T) {
	points := MonthlyTrend([]core.Transaction{
		txn(core.Expense, 1200, date(2025, 2, 1), "c", "a"),
		txn(core.Expense, 2400, date(2025, 7, 1), "c", "a"),
	}, 2025)

	s := Summarize(points, 2025, date(2025, 2, 15))
	if s.CurrentMonth.Cents != 1200 {
		t.Fatalf("current month = %d, want 1200", s.CurrentMonth.Cents)
	}
	if s.Highest.Cents != 2400 {
		t.Fatalf("highest = %d, want 2400", s.Highest.Cents)
	}
	if s.Average.Cents != 300 {
		t.Fatalf("average = %d, want 300", s.Average.Cents)
	}
}

func TestSummarizePastYearHasNoCurrentMonth(t *testing.T) {
	points := MonthlyTrend([]core.Transaction{
		txn(core.Expense, 1200, date(2024, 8, 1), "c", "a"),
	}, 2024)

	s := Summarize(points, 2024, date(2026, 8, 29))
	if s.CurrentMonth.Cents != 0 {
		t.Fatalf("current month = %d, want 0 for a past year", s.CurrentMonth.Cents)
	}
	if s.Highest.Cents != 1200 {
		t.Fatalf("highest = %d, want 1200", s.Highest.Cents)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	food := &core.Category{ID: "c1", Name: "Food"}
	rent := &core.Category{ID: "c2", Name: "Rent"}

	txns := []core.Transaction{
		txn(core.Expense, 500, date(2025, 1, 1), "c1", "a"),
		txn(core.Expense, 9000, date(2025, 1, 2), "c2", "a"),
		txn(core.Expense, 300, date(2025, 2, 3), "c1", "a"),
		txn(core.Income, 7777, date(2025, 1, 4), "c1", "a"), // ignored
	}
	txns[0].Category = food
	txns[1].Category = rent
	txns[2].Category = food

	out := CategoryBreakdown(txns)
	if len(out) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(out))
	}

	// Sorted descending by total.
	if out[0].Name != "Rent" || out[0].Total.Cents != 9000 || out[0].Count != 1 {
		t.Fatalf("unexpected first entry: %+v", out[0])
	}
	if out[1].Name != "Food" || out[1].Total.Cents != 800 || out[1].Count != 2 {
		t.Fatalf("unexpected second entry: %+v", out[1])
	}

	// Color slots follow first-seen order: Food was seen first.
	if out[1].ColorIndex != 0 || out[0].ColorIndex != 1 {
		t.Fatalf("unexpected color indexes: food=%d rent=%d", out[1].ColorIndex, out[0].ColorIndex)
	}

	var total int64
	for _, c := range out {
		total += c.Total.Cents
	}
	if total != 9800 {
		t.Fatalf("breakdown sum = %d, want 9800", total)
	}
}

func TestCategoryBreakdownPaletteCycles(t *testing.T) {
	var txns []core.Transaction
	for i := 0; i < 7; i++ {
		txns = append(txns, txn(core.Expense, int64(1000-i), date(2025, 1, 1+i), string(rune('a'+i)), "acc"))
	}
	out := CategoryBreakdown(txns)
	if len(out) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(out))
	}
	// Amounts descend with insertion order here, so order is preserved.
	for i, c := range out {
		if c.ColorIndex != i%PaletteSize {
			t.Fatalf("category %d color = %d, want %d", i, c.ColorIndex, i%PaletteSize)
		}
	}
}

func TestAccountBalance(t *testing.T) {
	txns := []core.Transaction{
		txn(core.Income, 100000, date(2025, 1, 1), "c", "a1"),
		txn(core.Expense, 40000, date(2025, 1, 2), "c", "a1"),
		txn(core.Transfer, 10000, date(2025, 1, 3), "c", "a1"),
		txn(core.Income, 555, date(2025, 1, 4), "c", "a2"), // other account
	}

	a := AccountBalance(txns, "a1")
	if a.Balance.Cents != 60000 {
		t.Errorf("balance = %d, want 60000", a.Balance.Cents)
	}
	if a.Income.Cents != 100000 {
		t.Errorf("income = %d, want 100000", a.Income.Cents)
	}
	if a.Expense.Cents != 40000 {
		t.Errorf("expense = %d, want 40000", a.Expense.Cents)
	}
	if a.Transfers.Cents != 10000 {
		t.Errorf("transfers = %d, want 10000", a.Transfers.Cents)
	}
}

func TestBudgetComparisonOverBudget(t *testing.T) {
	budget := core.Money{Cents: 100000}
	s := BudgetComparison(core.Money{Cents: 120000}, &budget, date(2025, 5, 10))

	if !s.OverBudget {
		t.Errorf("expected over budget")
	}
	if s.Remaining.Cents != 0 {
		t.Errorf("remaining = %d, want 0", s.Remaining.Cents)
	}
	if s.Percentage != 120 {
		t.Errorf("percentage = %f, want 120", s.Percentage)
	}
	if s.SafePerDay.Cents != 0 {
		t.Errorf("safe per day = %d, want 0", s.SafePerDay.Cents)
	}
}

func TestBudgetComparisonNoBudget(t *testing.T) {
	s := BudgetComparison(core.Money{Cents: 5000}, nil, date(2025, 5, 10))
	if s.Percentage != 0 {
		t.Errorf("percentage = %f, want 0", s.Percentage)
	}
	if s.OverBudget {
		t.Errorf("expected not over budget")
	}
	if s.HasBudget {
		t.Errorf("expected HasBudget false")
	}

	zero := core.Money{}
	s = BudgetComparison(core.Money{Cents: 5000}, &zero, date(2025, 5, 10))
	if s.Percentage != 0 || s.OverBudget {
		t.Errorf("zero budget must behave like no budget: %+v", s)
	}
}

func TestBudgetComparisonSafePerDay(t *testing.T) {
	budget := core.Money{Cents: 31000}
	// May 21st: 10 days remain in the month.
	s := BudgetComparison(core.Money{Cents: 1000}, &budget, date(2025, 5, 21))
	if s.DaysRemaining != 10 {
		t.Fatalf("days remaining = %d, want 10", s.DaysRemaining)
	}
	if s.SafePerDay.Cents != 3000 {
		t.Fatalf("safe per day = %d, want 3000", s.SafePerDay.Cents)
	}

	// Last day of the month: guard divides by 1 instead of 0.
	s = BudgetComparison(core.Money{Cents: 1000}, &budget, date(2025, 5, 31))
	if s.DaysRemaining != 0 {
		t.Fatalf("days remaining = %d, want 0", s.DaysRemaining)
	}
	if s.SafePerDay.Cents != 30000 {
		t.Fatalf("safe per day = %d, want 30000", s.SafePerDay.Cents)
	}
}

func TestYears(t *testing.T) {
	txns := []core.Transaction{
		txn(core.Expense, 1, date(2023, 1, 1), "c", "a"),
		txn(core.Income, 1, date(2025, 1, 1), "c", "a"),
		txn(core.Expense, 1, date(2023, 6, 1), "c", "a"),
		txn(core.Expense, 1, date(2024, 1, 1), "c", "a"),
	}
	years := Years(txns)
	want := []int{2025, 2024, 2023}
	if len(years) != len(want) {
		t.Fatalf("years = %v, want %v", years, want)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Fatalf("years = %v, want %v", years, want)
		}
	}
}
