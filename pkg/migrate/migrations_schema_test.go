package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductMigrationEnforcesStockFloor(t *testing.T) {
	content := readMigration(t, "*_create_catalog.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CHECK (stock >= 0)",
		"CHECK (price >= 0)",
		"FOREIGN KEY (seller_id) REFERENCES users(id)",
		"DROP TABLE IF EXISTS products",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBookingMigrationIndexesOrderID(t *testing.T) {
	content := readMigration(t, "*_create_bookings.sql")

	// order_id is shared by every booking in a checkout, so the index
	// must not be unique
	if strings.Contains(content, "UNIQUE INDEX IF NOT EXISTS idx_bookings_order_id") {
		t.Error("order_id index must allow duplicates across one checkout")
	}

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bookings",
		"CREATE INDEX IF NOT EXISTS idx_bookings_order_id ON bookings(order_id)",
		"CHECK (quantity >= 1)",
		"DROP TABLE IF EXISTS bookings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductCommentMigrationBoundsRating(t *testing.T) {
	content := readMigration(t, "*_create_product_comments.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS product_comments",
		"CHECK (rating BETWEEN 1 AND 5)",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS product_comments",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentMigrationConstrainsEnums(t *testing.T) {
	content := readMigration(t, "*_create_payments.sql")

	checks := []string{
		"transaction_id TEXT NOT NULL UNIQUE",
		"CHECK (payment_status IN ('pending', 'paid', 'failed', 'refunded'))",
		"CHECK (payment_method IN ('online', 'cod', 'wallet'))",
		"FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
