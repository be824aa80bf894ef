package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaymentsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payments_and_cashbacks.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payments",
		"FOREIGN KEY (subscription_id) REFERENCES subscriptions(id) ON DELETE CASCADE",
		"CHECK (amount >= 0)",
		"CREATE TABLE IF NOT EXISTS cashbacks",
		"payment_id UUID NOT NULL UNIQUE",
		"CHECK (percent >= 0 AND percent <= 100)",
		"DROP TABLE IF EXISTS payments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("migrations dir is empty")
	}
}
