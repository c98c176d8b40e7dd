package config

import (
	"os"
)

const (
	dbDriverEnv = "DB_DRIVER"
	dbDSNEnv    = "DB_DSN"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	defaultDBDriver = DBDriverSQLite
	defaultDBDSN    = "data/dispatcher.db"
)

type DatabaseConfig struct {
	Driver string
	DSN    string
}

// LoadDatabaseConfig defaults to a local SQLite file. The DSN default only
// applies to SQLite.
func LoadDatabaseConfig() *DatabaseConfig {
	driver := os.Getenv(dbDriverEnv)
	if driver == "" {
		driver = defaultDBDriver
	}

	dsn := os.Getenv(dbDSNEnv)
	if dsn == "" && driver == DBDriverSQLite {
		dsn = defaultDBDSN
	}

	return &DatabaseConfig{
		Driver: driver,
		DSN:    dsn,
	}
}

func (c *DatabaseConfig) Validate() error {
	if c.Driver != DBDriverSQLite && c.Driver != DBDriverPostgres {
		return ErrUnsupportedDBDriver
	}
	if c.DSN == "" {
		return ErrDBDSNMissing
	}
	return nil
}
