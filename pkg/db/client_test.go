package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteClient(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.Exec(`CREATE TABLE IF NOT EXISTS tx_probe (id INTEGER PRIMARY KEY, note TEXT)`).Error; err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return &Client{conn: conn}
}

func TestWithTxCommits(t *testing.T) {
	client := newSQLiteClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec(`INSERT INTO tx_probe (note) VALUES ('kept')`).Error
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int64
	if err := client.DB().Raw(`SELECT COUNT(*) FROM tx_probe WHERE note = 'kept'`).Scan(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 committed row, got %d", count)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := newSQLiteClient(t)

	sentinel := errors.New("abort")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec(`INSERT INTO tx_probe (note) VALUES ('dropped')`).Error; err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	var count int64
	if err := client.DB().Raw(`SELECT COUNT(*) FROM tx_probe WHERE note = 'dropped'`).Scan(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Constraint: "idx_products_sku"}

	if !IsUniqueViolation(pqErr, "") {
		t.Fatalf("expected unique violation match without constraint")
	}
	if !IsUniqueViolation(pqErr, "idx_products_sku") {
		t.Fatalf("expected unique violation match with constraint")
	}
	if IsUniqueViolation(pqErr, "idx_users_email") {
		t.Fatalf("did not expect match for different constraint")
	}
	if !IsUniqueViolation(fmt.Errorf("UNIQUE constraint failed: products.sku"), "") {
		t.Fatalf("expected sqlite unique failure to match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error should never match")
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatalf("deadline exceeded should classify as timeout")
	}
	if !IsTimeout(fmt.Errorf("query: %w", context.Canceled)) {
		t.Fatalf("wrapped cancellation should classify as timeout")
	}
	if IsTimeout(errors.New("boom")) {
		t.Fatalf("plain error should not classify as timeout")
	}
}
