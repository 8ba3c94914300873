package movements

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB connects to the database named by SHOPLITE_DB_DSN. Tests that
// need a real database skip when the variable is unset, so the suite stays
// runnable without infrastructure.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("SHOPLITE_DB_DSN")
	if dsn == "" {
		t.Skip("SHOPLITE_DB_DSN not set; skipping database test")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	return gdb
}

// beginTestTx starts a transaction that rolls back when the test finishes, so
// repository tests never leave rows behind.
func beginTestTx(t *testing.T) *gorm.DB {
	t.Helper()

	tx := openTestDB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("beginning test transaction: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}
