package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func sampleTransaction(id string, cents int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      "test-user",
		Amount:      core.Money{Cents: cents},
		Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Description: "coffee",
		CategoryID:  "cat-1",
		AccountID:   "acc-1",
		Type:        core.Expense,
		UpdatedAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Category:    &core.Category{ID: "cat-1", Name: "Food"},
		Account:     &core.Account{ID: "acc-1", Name: "Main"},
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open feed: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	return rows
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed", "transactions.csv")
	feed := NewCSVFeed(path)
	ctx := context.Background()

	if err := feed.Append(ctx, sampleTransaction("t1", 450)); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := feed.Append(ctx, sampleTransaction("t2", 1200)); err != nil {
		t.Fatalf("second append: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "id" {
		t.Fatalf("first row should be the header, got %v", rows[0])
	}
	if rows[1][0] != "t1" || rows[2][0] != "t2" {
		t.Fatalf("rows out of order: %v", rows)
	}
}

func TestAppendResolvesNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	feed := NewCSVFeed(path)

	if err := feed.Append(context.Background(), sampleTransaction("t1", 450)); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows := readRows(t, path)
	row := rows[1]
	if row[2] != "2025-03-14" {
		t.Errorf("date = %q, want 2025-03-14", row[2])
	}
	if row[4] != "4.50" {
		t.Errorf("amount = %q, want 4.50", row[4])
	}
	if row[6] != "Food" || row[7] != "Main" {
		t.Errorf("names not resolved: category=%q account=%q", row[6], row[7])
	}
}

func TestAppendFallsBackToIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	feed := NewCSVFeed(path)

	txn := sampleTransaction("t1", 450)
	txn.Category = nil
	txn.Account = nil
	if err := feed.Append(context.Background(), txn); err != nil {
		t.Fatalf("append: %v", err)
	}

	row := readRows(t, path)[1]
	if row[6] != "cat-1" || row[7] != "acc-1" {
		t.Errorf("expected raw ids, got category=%q account=%q", row[6], row[7])
	}
}

func TestAppendRespectsCancelledContext(t *testing.T) {
	feed := NewCSVFeed(filepath.Join(t.TempDir(), "transactions.csv"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := feed.Append(ctx, sampleTransaction("t1", 450)); err == nil {
		t.Fatal("expected context error")
	}
}
