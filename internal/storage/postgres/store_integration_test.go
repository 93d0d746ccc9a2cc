package postgres

import (
	"context"
	"testing"
	"time"
)

func TestStore_PostgresPingAndMigrationStatus(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if version < 1 || count < 1 {
		t.Fatalf("expected at least one applied migration, got version=%d count=%d", version, count)
	}
}

func TestStore_PostgresMigrateDownUpCycle(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	before, _, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status before: %v", err)
	}

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	after, _, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status after: %v", err)
	}
	if after != before {
		t.Fatalf("expected version %d after cycle, got %d", before, after)
	}
}
