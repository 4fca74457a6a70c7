package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/folio/internal/version"
)

// Schema layout:
//
//	migration/{driver}/LATEST.sql                     full schema, applied once to an empty database
//	migration/{driver}/{major.minor}/NN__desc.sql     upgrade step, schema version {major.minor}.{NN+1}
//	seed/{driver}/*.sql                               demo data, applied in demo mode
//
// The applied schema version is kept in system_setting under SystemSettingSchemaVersionName.

//go:embed migration
var migrationFS embed.FS

//go:embed seed
var seedFS embed.FS

const (
	// MigrateFileNameSplit separates the patch number from the description, as in "00__project_tag.sql".
	MigrateFileNameSplit = "__"
	// LatestSchemaFileName holds the full current schema for fresh databases.
	LatestSchemaFileName = "LATEST.sql"

	defaultSchemaVersion = "0.0.0"

	modeProd = "prod"
	modeDemo = "demo"
)

// migrationScript is one upgrade step and the schema version it produces.
type migrationScript struct {
	path    string
	version string
}

// Migrate brings the database schema up to the version this build expects.
// A fresh database gets LATEST.sql. In prod mode recorded versions are upgraded
// step by step; in demo mode the demo data is seeded.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if !initialized {
		if err := s.initSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to initialize schema")
		}
	}

	switch s.profile.Mode {
	case modeProd:
		if err := s.upgrade(ctx); err != nil {
			return errors.Wrap(err, "failed to upgrade schema")
		}
	case modeDemo:
		if err := s.seed(ctx); err != nil {
			return errors.Wrap(err, "failed to seed")
		}
	}
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	file := path.Join(s.migrationDir(), LatestSchemaFileName)
	script, err := migrationFS.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", file)
	}
	target, err := s.GetCurrentSchemaVersion()
	if err != nil {
		return err
	}

	slog.Info("initializing database", slog.String("file", file), slog.String("schemaVersion", target))
	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.execScript(ctx, tx, string(script))
	}); err != nil {
		return errors.Wrapf(err, "failed to apply %s", file)
	}
	return s.updateCurrentSchemaVersion(ctx, target)
}

func (s *Store) upgrade(ctx context.Context) error {
	current, err := s.getDatabaseSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get database schema version")
	}
	target, err := s.GetCurrentSchemaVersion()
	if err != nil {
		return err
	}
	if current == target {
		return nil
	}
	if current != "" && version.IsVersionGreaterThan(current, target) {
		return errors.Errorf("cannot downgrade schema version from %s to %s", current, target)
	}

	scripts, err := s.pendingMigrations(current, target)
	if err != nil {
		return err
	}
	slog.Info("upgrading schema",
		slog.String("from", orDefaultVersion(current)),
		slog.String("to", target),
		slog.Int("steps", len(scripts)),
	)
	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range scripts {
			script, err := migrationFS.ReadFile(m.path)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", m.path)
			}
			if err := s.execScript(ctx, tx, string(script)); err != nil {
				return errors.Wrapf(err, "migration %s", m.path)
			}
			slog.Info("applied migration", slog.String("file", m.path), slog.String("version", m.version))
		}
		return nil
	}); err != nil {
		return err
	}
	return s.updateCurrentSchemaVersion(ctx, target)
}

// pendingMigrations lists the upgrade steps in (current, target], oldest first.
func (s *Store) pendingMigrations(current, target string) ([]migrationScript, error) {
	paths, err := fs.Glob(migrationFS, path.Join(s.migrationDir(), "*", "*.sql"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list migrations")
	}

	var scripts []migrationScript
	for _, p := range paths {
		if err := validateMigrationFileName(path.Base(p)); err != nil {
			return nil, err
		}
		v, err := s.getSchemaVersionOfMigrateScript(p)
		if err != nil {
			return nil, err
		}
		if shouldApplyMigration(v, current, target) {
			scripts = append(scripts, migrationScript{path: p, version: v})
		}
	}
	sort.Slice(scripts, func(i, j int) bool {
		return version.IsVersionGreaterThan(scripts[j].version, scripts[i].version)
	})
	return scripts, nil
}

// seed loads the demo data. Only sqlite ships seed files.
func (s *Store) seed(ctx context.Context) error {
	paths, err := fs.Glob(seedFS, path.Join("seed", s.profile.Driver, "*.sql"))
	if err != nil {
		return errors.Wrap(err, "failed to list seed files")
	}
	if len(paths) == 0 {
		slog.Warn("no seed data for driver", slog.String("driver", s.profile.Driver))
		return nil
	}
	sort.Strings(paths)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range paths {
			script, err := seedFS.ReadFile(p)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", p)
			}
			if err := s.execScript(ctx, tx, string(script)); err != nil {
				return errors.Wrapf(err, "seed %s", p)
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// execScript runs every statement of script. lib/pq rejects multi-statement
// Exec calls with arguments, so statements always go one at a time.
func (s *Store) execScript(ctx context.Context, tx *sql.Tx, script string) error {
	for i, stmt := range splitSQL(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "statement %d", i+1)
		}
	}
	return nil
}

// splitSQL splits script on semicolons outside single-quoted literals and drops
// "--" comments. The schema files use no dollar quoting or block comments.
func splitSQL(script string) []string {
	var (
		statements []string
		current    strings.Builder
		inQuote    bool
	)
	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		for i := 0; i < len(line); i++ {
			ch := line[i]
			switch {
			case ch == '\'':
				inQuote = !inQuote
			case !inQuote && ch == '-' && strings.HasPrefix(line[i:], "--"):
				i = len(line)
				continue
			case !inQuote && ch == ';':
				current.WriteByte(ch)
				flush()
				continue
			}
			current.WriteByte(ch)
		}
		current.WriteByte('\n')
	}
	flush()
	return statements
}

func (s *Store) migrationDir() string {
	return path.Join("migration", s.profile.Driver)
}

// GetCurrentSchemaVersion returns the schema version this build expects: the
// version of the newest upgrade step under the current minor version.
func (s *Store) GetCurrentSchemaVersion() (string, error) {
	minor := version.GetMinorVersion(version.GetCurrentVersion(s.profile.Mode))
	paths, err := fs.Glob(migrationFS, path.Join(s.migrationDir(), minor, "*.sql"))
	if err != nil {
		return "", errors.Wrap(err, "failed to list migrations")
	}
	if len(paths) == 0 {
		return minor + ".0", nil
	}
	sort.Strings(paths)
	return s.getSchemaVersionOfMigrateScript(paths[len(paths)-1])
}

// getSchemaVersionOfMigrateScript maps ".../0.3/00__x.sql" to "0.3.1".
// LATEST.sql maps to the current schema version.
func (s *Store) getSchemaVersionOfMigrateScript(file string) (string, error) {
	if path.Base(file) == LatestSchemaFileName {
		return s.GetCurrentSchemaVersion()
	}
	minor := path.Base(path.Dir(file))
	if minor == "." || minor == "/" {
		return "", errors.Errorf("invalid migration path: %s", file)
	}
	rawPatch, _, _ := strings.Cut(path.Base(file), MigrateFileNameSplit)
	patch, err := strconv.Atoi(rawPatch)
	if err != nil {
		return "", errors.Wrapf(err, "invalid patch number in %s", file)
	}
	return fmt.Sprintf("%s.%d", minor, patch+1), nil
}

func validateMigrationFileName(name string) error {
	patch, desc, ok := strings.Cut(name, MigrateFileNameSplit)
	if !ok || desc == "" {
		return errors.Errorf("migration %s: expected NN%sdescription.sql", name, MigrateFileNameSplit)
	}
	if _, err := strconv.Atoi(patch); err != nil {
		return errors.Errorf("migration %s: patch %q is not a number", name, patch)
	}
	return nil
}

// shouldApplyMigration reports whether fileVersion lies in (current, target].
func shouldApplyMigration(fileVersion, current, target string) bool {
	return version.IsVersionGreaterThan(fileVersion, orDefaultVersion(current)) &&
		version.IsVersionGreaterOrEqualThan(target, fileVersion)
}

func orDefaultVersion(v string) string {
	if v == "" {
		return defaultSchemaVersion
	}
	return v
}

func (s *Store) updateCurrentSchemaVersion(ctx context.Context, schemaVersion string) error {
	if _, err := s.UpsertSystemSetting(ctx, &SystemSetting{
		Name:        SystemSettingSchemaVersionName,
		Value:       schemaVersion,
		Description: "schema version applied to this database",
	}); err != nil {
		return errors.Wrap(err, "failed to upsert schema version")
	}
	return nil
}

// getDatabaseSchemaVersion returns the recorded schema version, or "" when none is recorded.
func (s *Store) getDatabaseSchemaVersion(ctx context.Context) (string, error) {
	name := SystemSettingSchemaVersionName
	setting, err := s.GetSystemSetting(ctx, &FindSystemSetting{Name: &name})
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}
