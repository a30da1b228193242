// Package export appends transactions to a local CSV feed consumed by
// external spreadsheet tooling.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/core"
)

var header = []string{
	"id", "user_id", "date", "description", "amount",
	"transaction_type", "category", "account", "exported_at",
}

// CSVFeed appends transaction rows to one CSV file. Appends are serialized,
// and the header is written when the file is new or empty.
type CSVFeed struct {
	mu   sync.Mutex
	path string
}

func NewCSVFeed(path string) *CSVFeed {
	return &CSVFeed{path: path}
}

func (f *CSVFeed) Path() string {
	return f.path
}

func (f *CSVFeed) Append(ctx context.Context, t core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat export file: %w", err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(record(t)); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export file: %w", err)
	}
	return nil
}

func record(t core.Transaction) []string {
	category := t.CategoryID
	if t.Category != nil {
		category = t.Category.Name
	}
	account := t.AccountID
	if t.Account != nil {
		account = t.Account.Name
	}
	return []string{
		t.ID,
		t.UserID,
		t.Date.Format("2006-01-02"),
		t.Description,
		t.Amount.String(),
		string(t.Type),
		category,
		account,
		t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
