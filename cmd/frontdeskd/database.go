package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarkoPoloResearchLab/frontdesk/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/frontdesk/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/frontdesk/internal/store/pgstore"
	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
	driverMySQL    = "mysql"

	storeDriverGorm = "gorm"
	storeDriverPGX  = "pgx"
)

// openStore returns the configured store and its cleanup. Sqlite schemas are
// always migrated; other databases only when migrate is set.
func openStore(ctx context.Context, cfg *runtimeConfig, migrate bool) (frontdesk.Store, func() error, string, error) {
	driver, target, err := resolveDriver(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, "", err
	}
	if driver == driverMemory {
		return memstore.New(), func() error { return nil }, driver, nil
	}

	if cfg.StoreDriver == storeDriverPGX {
		if driver != driverPostgres {
			return nil, nil, "", fmt.Errorf("store driver %s requires a postgres database url", storeDriverPGX)
		}
		pool, err := pgxpool.New(ctx, target)
		if err != nil {
			return nil, nil, "", fmt.Errorf("database open: %w", err)
		}
		if migrate {
			if err := pgstore.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, "", err
			}
		}
		return pgstore.New(pool), func() error { pool.Close(); return nil }, driver, nil
	}

	gormDB, cleanup, err := openDatabase(ctx, driver, target)
	if err != nil {
		return nil, nil, "", fmt.Errorf("database open: %w", err)
	}
	if err := prepareSchema(gormDB, driver, migrate); err != nil {
		_ = cleanup()
		return nil, nil, "", err
	}
	return gormstore.New(gormDB), cleanup, driver, nil
}

func openDatabase(ctx context.Context, driver string, target string) (*gorm.DB, func() error, error) {
	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	switch driver {
	case driverPostgres:
		db, err = gorm.Open(postgres.Open(target), cfg)
	case driverSQLite:
		db, err = gorm.Open(sqlite.Open(target), cfg)
	case driverMySQL:
		db, err = gorm.Open(mysql.Open(target), cfg)
	default:
		return nil, nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if driver == driverSQLite {
		// A single connection serialises sqlite writers and keeps ":memory:" on one database.
		sqlDB.SetMaxOpenConns(1)
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, nil
}

// resolveDriver maps a database url to a driver name and the dsn that driver expects.
func resolveDriver(dsn string) (string, string, error) {
	switch {
	case dsn == "" || strings.HasPrefix(dsn, "memory://"):
		return driverMemory, "", nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return driverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		return driverMySQL, mysqlDSN(strings.TrimPrefix(dsn, "mysql://")), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "frontdesk.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return driverSQLite, sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return driverSQLite, sqlitePath, err
}

// mysqlDSN ensures DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}

func prepareSchema(db *gorm.DB, driver string, migrate bool) error {
	if driver != driverSQLite && !migrate {
		return nil
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
