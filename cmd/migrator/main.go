package main

import (
	"flag"
	"net/url"
	"os"

	"storefront/internal/config"
	"storefront/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const migrationsTable = "schema_migrations"

func main() {
	var (
		pathFlag string
		down     bool
		steps    int
	)
	flag.StringVar(&pathFlag, "migrations-path", "", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back instead of applying")
	flag.IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	flag.Parse()

	log := logger.Setup(os.Getenv("APP_ENV")).WithField("component", "migrator")

	cfg, err := config.LoadMigrator()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	path := cfg.MigrationsPath
	if pathFlag != "" {
		path = pathFlag
	}

	dsn, err := withMigrationsTable(cfg.Database.MigrateURL(), migrationsTable)
	if err != nil {
		log.WithError(err).Fatal("build dsn")
	}

	m, err := migrate.New("file://"+path, dsn)
	if err != nil {
		log.WithError(err).Fatal("create migrate instance")
	}
	defer m.Close()

	if err := run(m, down, steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return
		}
		log.WithError(err).Fatal("migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.WithError(err).Fatal("read version")
	}
	log.WithField("version", version).WithField("dirty", dirty).Info("migrations applied")
}

func run(m *migrate.Migrate, down bool, steps int) error {
	switch {
	case steps > 0 && down:
		return m.Steps(-steps)
	case steps > 0:
		return m.Steps(steps)
	case down:
		return m.Down()
	default:
		return m.Up()
	}
}

// DATABASE_URLにも x-migrations-table を足す
func withMigrationsTable(dsn string, table string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse database url")
	}
	q := u.Query()
	if q.Get("x-migrations-table") == "" {
		q.Set("x-migrations-table", table)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
