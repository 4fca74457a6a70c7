package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/folio/internal/profile"
	"github.com/hrygo/folio/store"
	"github.com/hrygo/folio/store/db/postgres"
	"github.com/hrygo/folio/store/db/sqlite"
)

// ============================================================================
// DATABASE SUPPORT POLICY
// ============================================================================
// PostgreSQL: production.
// SQLite: development, demo and tests. Same schema, same semantics.
//
// Both drivers must enable foreign keys; association rows rely on
// ON DELETE CASCADE to disappear with their item or tag.
// ============================================================================

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
