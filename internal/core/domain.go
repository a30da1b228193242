package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Credit     AccountType = "credit"
	Investment AccountType = "investment"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	OverallBudget  BudgetType = "overall"
	CategoryBudget BudgetType = "category"
)

type (
	AccountType     string
	TransactionType string
	BudgetType      string

	Account struct {
		ID        string      `json:"id"`
		UserID    string      `json:"user_id"`
		Name      string      `json:"name"`
		Type      AccountType `json:"type"`
		CreatedAt time.Time   `json:"created_at"`
		UpdatedAt time.Time   `json:"updated_at"`
	}

	// Category is global, not user-scoped.
	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		Amount      Money           `json:"amount"`
		Date        time.Time       `json:"date"`
		Description string          `json:"description"`
		CategoryID  string          `json:"category_id"`
		AccountID   string          `json:"account_id"`
		Type        TransactionType `json:"transaction_type"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`

		// Resolved references, populated on reads.
		Category *Category `json:"category,omitempty"`
		Account  *Account  `json:"account,omitempty"`
	}

	Budget struct {
		ID         string     `json:"id"`
		UserID     string     `json:"user_id"`
		CategoryID string     `json:"category_id,omitempty"` // empty for overall budgets
		Type       BudgetType `json:"budget_type"`
		Amount     Money      `json:"amount"`
		Month      int        `json:"month"` // 1-12
		Year       int        `json:"year"`
		CreatedAt  time.Time  `json:"created_at"`
		UpdatedAt  time.Time  `json:"updated_at"`

		Category *Category `json:"category,omitempty"`
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 100 characters)")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidTxnType     = errors.New("invalid transaction type")
	ErrInvalidBudgetType  = errors.New("invalid budget type")
	ErrMissingCategory    = errors.New("missing category reference")
	ErrMissingAccount     = errors.New("missing account reference")
)

func (t AccountType) Valid() bool {
	switch t {
	case Checking, Savings, Credit, Investment:
		return true
	default:
		return false
	}
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	default:
		return false
	}
}

func (t BudgetType) Valid() bool {
	switch t {
	case OverallBudget, CategoryBudget:
		return true
	default:
		return false
	}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return ErrNameTooLong
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrMissingAccount
	}
	if !t.Type.Valid() {
		return ErrInvalidTxnType
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Type.Valid() {
		return ErrInvalidBudgetType
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 1970 || b.Year > 9999 {
		return ErrInvalidYear
	}
	if b.Type == CategoryBudget && strings.TrimSpace(b.CategoryID) == "" {
		return ErrMissingCategory
	}
	return nil
}

// Patch types for partial updates. Nil fields are left untouched.
type (
	AccountUpdate struct {
		Name *string      `json:"name"`
		Type *AccountType `json:"type"`
	}

	CategoryUpdate struct {
		Name *string `json:"name"`
	}

	TransactionUpdate struct {
		Amount      *Money           `json:"amount"`
		Date        *time.Time       `json:"date"`
		Description *string          `json:"description"`
		CategoryID  *string          `json:"category_id"`
		AccountID   *string          `json:"account_id"`
		Type        *TransactionType `json:"transaction_type"`
	}

	BudgetUpdate struct {
		Amount *Money `json:"amount"`
		Month  *int   `json:"month"`
		Year   *int   `json:"year"`
	}
)
