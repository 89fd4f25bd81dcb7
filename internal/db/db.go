// Package db provides database connectivity and operations
package db

import (
	"errors"
	"fmt"
	"log"
	"os"

	"dario.cat/mergo"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/workshopstudio/taskapi/internal/db/models"
)

// Database configuration constants
const (
	// DefaultHost is the default database host
	DefaultHost = "localhost"
	// DefaultPort is the default database port
	DefaultPort = 5432
	// DefaultUser is the default database user
	DefaultUser = "postgres"
	// DefaultPassword is the default database password
	DefaultPassword = "postgres"
	// DefaultDBName is the default database name
	DefaultDBName     = "tasks"
	DefaultSSLEnabled = false

	// MemoryDSN opens a private in-memory sqlite database
	MemoryDSN = "file::memory:"
)

// Options represents database connection configuration options
type Options struct {
	Host       string
	User       string
	Password   string
	DBName     string
	Port       int
	SSLEnabled *bool
	LogLevel   logger.LogLevel
}

// DefaultOptions returns the options used for every field left unset
func DefaultOptions() Options {
	ssl := DefaultSSLEnabled
	return Options{
		Host:       DefaultHost,
		User:       DefaultUser,
		Password:   DefaultPassword,
		DBName:     DefaultDBName,
		Port:       DefaultPort,
		SSLEnabled: &ssl,
		LogLevel:   logger.Warn,
	}
}

// WithDefaults fills the zero fields of opts from DefaultOptions
func (opts Options) WithDefaults() (Options, error) {
	if err := mergo.Merge(&opts, DefaultOptions()); err != nil {
		return opts, fmt.Errorf("failed to apply database defaults: %w", err)
	}
	return opts, nil
}

// DSN renders the postgres connection string
func (opts Options) DSN() string {
	sslMode := "disable"
	if opts.SSLEnabled != nil && *opts.SSLEnabled {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		opts.Host, opts.User, opts.Password, opts.DBName, opts.Port, sslMode)
}

// New opens a postgres connection and migrates the schema
func New(opts Options) (*gorm.DB, error) {
	opts, err := opts.WithDefaults()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(opts.DSN()), gormConfig(opts.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres at %s:%d: %w", opts.Host, opts.Port, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a sqlite database at path and migrates the schema.
// Use MemoryDSN for a throwaway database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logger.Silent))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == MemoryDSN {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsDuplicateKeyError reports whether err is a unique constraint violation
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(postgres.Dialector{}.Translate(err), gorm.ErrDuplicatedKey)
}

// gormConfig routes GORM's SQL logging through stdout and hides not-found
// lookups, which the repositories report as ErrNotFound instead.
func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		}),
		TranslateError: true,
	}
}
