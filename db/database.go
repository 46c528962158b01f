package db

import (
	"fmt"
	"log"
	"net/url"

	"studio_site_go/config"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the primary datastore. A configured Turso URL wins over the
// local sqlite file, which runs in WAL mode for concurrent readers.
func Initialize(cfg *config.Config) error {
	var err error

	logLevel := logger.Info
	if cfg.Environment == "production" {
		logLevel = logger.Warn
	}

	dialector, target, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Database connection established (%s)", target)
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, string, error) {
	if cfg.TursoDatabaseURL == "" {
		dsn := cfg.DBPath + "?_journal_mode=WAL"
		return sqlite.Open(dsn), "sqlite " + cfg.DBPath + ", WAL mode enabled", nil
	}

	dsn, err := tursoDSN(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
	if err != nil {
		return nil, "", err
	}
	return sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn}), "turso " + redactedHost(cfg.TursoDatabaseURL), nil
}

// tursoDSN appends the auth token as the authToken query parameter expected by the libsql driver
func tursoDSN(rawURL, authToken string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid TURSO_DATABASE_URL: %w", err)
	}
	if authToken != "" {
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func redactedHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "(unparseable url)"
	}
	return u.Host
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.AutoMigrate(models...)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
