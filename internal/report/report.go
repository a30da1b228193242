// Package report aggregates flat transaction lists into the figures the
// dashboard views render: monthly trends, category breakdowns, account
// balances and budget comparisons. Everything here is pure and
// deterministic given its inputs; persistence and transport live elsewhere.
package report

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

// PaletteSize is the number of chart color slots cycled through when
// assigning colors to categories and accounts.
const PaletteSize = 5

type (
	// TrendPoint is one month of the yearly expense trend.
	TrendPoint struct {
		Label string     `json:"month"` // "Jan" .. "Dec"
		Total core.Money `json:"amount"`
	}

	// TrendSummary carries the dashboard headline figures for a year.
	TrendSummary struct {
		CurrentMonth core.Money `json:"current_month"`
		Average      core.Money `json:"average"`
		Highest      core.Money `json:"highest"`
	}

	// CategorySummary aggregates expense transactions of one category.
	CategorySummary struct {
		CategoryID string     `json:"category_id"`
		Name       string     `json:"name"`
		Total      core.Money `json:"amount"`
		Count      int        `json:"count"`
		ColorIndex int        `json:"color_index"` // 0..PaletteSize-1
	}

	// AccountActivity is the folded transaction history of one account.
	// Transfers are tracked separately and do not move the balance.
	AccountActivity struct {
		Balance   core.Money `json:"balance"`
		Income    core.Money `json:"income"`
		Expense   core.Money `json:"expense"`
		Transfers core.Money `json:"transfers"`
	}

	// BudgetStatus compares spending against a budget for one period.
	BudgetStatus struct {
		Spent         core.Money `json:"spent"`
		Budget        core.Money `json:"budget"`
		HasBudget     bool       `json:"has_budget"`
		Percentage    float64    `json:"percentage"`
		Remaining     core.Money `json:"remaining"`
		OverBudget    bool       `json:"over_budget"`
		DaysRemaining int        `json:"days_remaining"`
		SafePerDay    core.Money `json:"safe_to_spend_per_day"`
	}
)

// MonthlyTrend buckets expense transactions of the given year into twelve
// monthly totals, Jan through Dec, zero-filled for months without expenses.
func MonthlyTrend(txns []core.Transaction, year int) []TrendPoint {
	points := make([]TrendPoint, 12)
	for i := range points {
		points[i].Label = time.Month(i + 1).String()[:3]
	}
	for _, t := range txns {
		if t.Type != core.Expense || t.Date.Year() != year {
			continue
		}
		points[int(t.Date.Month())-1].Total.Cents += t.Amount.Cents
	}
	return points
}

// Summarize derives the headline figures from a trend covering the given
// year. The current-month slot is filled only when now falls inside that
// year; past years report no current month.
func Summarize(points []TrendPoint, year int, now time.Time) TrendSummary {
	var s TrendSummary
	if len(points) == 0 {
		return s
	}
	var sum int64
	for i, p := range points {
		sum += p.Total.Cents
		if p.Total.Cents > s.Highest.Cents {
			s.Highest = p.Total
		}
		if now.Year() == year && i == int(now.Month())-1 {
			s.CurrentMonth = p.Total
		}
	}
	s.Average = core.Money{Cents: sum / int64(len(points))}
	return s
}

// CategoryBreakdown totals expense transactions per category. Color slots
// cycle through the palette in first-seen order; the result is sorted
// descending by total amount.
func CategoryBreakdown(txns []core.Transaction) []CategorySummary {
	index := make(map[string]int)
	var out []CategorySummary
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		name := t.CategoryID
		if t.Category != nil {
			name = t.Category.Name
		}
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, CategorySummary{
				CategoryID: t.CategoryID,
				Name:       name,
				ColorIndex: i % PaletteSize,
			})
		}
		out[i].Total.Cents += t.Amount.Cents
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Total.Cents > out[b].Total.Cents
	})
	return out
}

// AccountBalance folds the transaction history of one account. Income adds
// to the balance, expenses subtract, transfers accumulate separately
// without moving the balance.
func AccountBalance(txns []core.Transaction, accountID string) AccountActivity {
	var a AccountActivity
	for _, t := range txns {
		if t.AccountID != accountID {
			continue
		}
		switch t.Type {
		case core.Income:
			a.Income.Cents += t.Amount.Cents
			a.Balance.Cents += t.Amount.Cents
		case core.Expense:
			a.Expense.Cents += t.Amount.Cents
			a.Balance.Cents -= t.Amount.Cents
		case core.Transfer:
			a.Transfers.Cents += t.Amount.Cents
		}
	}
	return a
}

// BudgetComparison derives percentage spent, remaining headroom and a
// safe-to-spend-per-day figure for the rest of now's calendar month.
// A nil budget means no budget is set: percentage 0, never over budget.
func BudgetComparison(spent core.Money, budget *core.Money, now time.Time) BudgetStatus {
	s := BudgetStatus{Spent: spent}

	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	s.DaysRemaining = lastDay - now.Day()

	if budget == nil || budget.Cents == 0 {
		return s
	}
	s.HasBudget = true
	s.Budget = *budget
	s.Percentage = float64(spent.Cents) / float64(budget.Cents) * 100
	s.OverBudget = spent.Cents > budget.Cents
	if remaining := budget.Cents - spent.Cents; remaining > 0 {
		s.Remaining = core.Money{Cents: remaining}
	}

	days := s.DaysRemaining
	if days == 0 {
		days = 1
	}
	s.SafePerDay = core.Money{Cents: s.Remaining.Cents / int64(days)}
	return s
}

// Years lists the distinct transaction years, newest first. Used by the
// dashboard's year selector.
func Years(txns []core.Transaction) []int {
	seen := make(map[int]bool)
	var out []int
	for _, t := range txns {
		y := t.Date.Year()
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
