package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/folio/internal/profile"
	"github.com/hrygo/folio/internal/version"
	"github.com/hrygo/folio/store"
	"github.com/hrygo/folio/store/db"
)

// NewTestingStore returns a migrated store backed by the driver named in the
// DRIVER environment variable, SQLite in a temporary directory by default.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	profile := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(dbDriver, profile)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		ts.Close()
	})
	return ts
}

func getTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()
	dir := t.TempDir()
	mode := "dev"
	driver := getDriverFromEnv()

	p := &profile.Profile{
		Mode:    mode,
		Data:    dir,
		Driver:  driver,
		Version: version.GetCurrentVersion(mode),
	}
	switch driver {
	case "sqlite":
		p.DSN = filepath.Join(dir, fmt.Sprintf("folio_%s.db", mode))
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}
