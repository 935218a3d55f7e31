package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SetupDatabase initializes the database connection and creates the schema
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// OpenDatabase connects without touching the schema
func OpenDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	if cfg.Database.Driver == DriverSQLite {
		// SQLite allows a single writer; one connection also keeps a
		// shared in-memory database alive for the life of the pool.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(5)
	}

	return db, nil
}

// CreateTables creates the necessary tables in the database
func CreateTables(db *sqlx.DB) error {
	pk := "SERIAL PRIMARY KEY"
	if db.DriverName() == DriverSQLite {
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS addresses (
			id %[1]s,
			street_addr VARCHAR(80) NOT NULL,
			city VARCHAR(40) NOT NULL,
			region VARCHAR(40) NOT NULL,
			zip VARCHAR(10) NOT NULL,
			country VARCHAR(20) NOT NULL,
			UNIQUE (street_addr, city)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id %[1]s,
			username VARCHAR(255) UNIQUE NOT NULL,
			user_group VARCHAR(255) NOT NULL,
			address_id INTEGER REFERENCES addresses(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id %[1]s,
			name VARCHAR(100) NOT NULL,
			author VARCHAR(100) NOT NULL,
			translator VARCHAR(100),
			genre VARCHAR(100),
			year INTEGER,
			publisher VARCHAR(100),
			isbn VARCHAR(20)
		)`,
		`CREATE TABLE IF NOT EXISTS libraries (
			id %[1]s,
			user_id INTEGER UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			hidden_lib BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS library_books (
			id %[1]s,
			library_id INTEGER NOT NULL REFERENCES libraries(id) ON DELETE CASCADE,
			book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			hidden BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(255) NOT NULL DEFAULT 'Available for exchange',
			UNIQUE (library_id, book_id)
		)`,
		`CREATE TABLE IF NOT EXISTS wishlist (
			id %[1]s,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			UNIQUE (user_id, book_id)
		)`,
	}

	for _, ddl := range tables {
		if _, err := db.Exec(fmt.Sprintf(ddl, pk)); err != nil {
			return err
		}
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_library_books_book_id ON library_books(book_id)",
		"CREATE INDEX IF NOT EXISTS idx_wishlist_book_id ON wishlist(book_id)",
		"CREATE INDEX IF NOT EXISTS idx_users_address_id ON users(address_id)",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
