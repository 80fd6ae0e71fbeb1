package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orderdeskhq/orderdesk-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestInitSchemaMigrationContainsWorkflowTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE users",
		"CREATE TABLE delivery_agents",
		"CREATE TABLE orders",
		"CREATE TABLE order_items",
		"CREATE TABLE call_attempts",
		"CREATE TABLE order_status_changes",
		"CREATE TABLE audit_logs",
		"DROP TABLE IF EXISTS order_status_changes",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
