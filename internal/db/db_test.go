package db

import (
	"testing"

	"opinions/internal/models"
)

func TestInitSQLite(t *testing.T) {
	if err := Init("sqlite", "file:dbtest?mode=memory&cache=shared"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, m := range []any{&models.User{}, &models.Topic{}, &models.Opinion{}, &models.Comment{}, &models.Notification{}} {
		if !DB.Migrator().HasTable(m) {
			t.Errorf("expected table for %T", m)
		}
	}

	// Migrate is idempotent
	if err := Migrate(DB); err != nil {
		t.Errorf("second migrate failed: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
