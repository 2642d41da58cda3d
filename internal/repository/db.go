package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	// Monetary columns are TEXT holding exact decimal strings, never floats.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			account_number TEXT PRIMARY KEY,
			holder_name TEXT NOT NULL,
			type TEXT NOT NULL,
			currency TEXT NOT NULL,
			balance TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL DEFAULT 'Active',
			bic TEXT NOT NULL DEFAULT '',
			debit_authority TEXT NOT NULL DEFAULT '',
			linked_fca TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_type ON accounts(type)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_holder ON accounts(holder_name)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_currency ON accounts(currency)`,

		`CREATE TABLE IF NOT EXISTS statement_entries (
			statement_id TEXT PRIMARY KEY,
			ledger TEXT NOT NULL,
			value_date DATETIME NOT NULL,
			currency TEXT NOT NULL,
			amount TEXT NOT NULL,
			side TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			reference TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_statement_entries_ledger ON statement_entries(ledger)`,
		`CREATE INDEX IF NOT EXISTS idx_statement_entries_value_date ON statement_entries(value_date)`,

		`CREATE TABLE IF NOT EXISTS fx_rates (
			currency TEXT PRIMARY KEY,
			aud_rate TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS cases (
			id TEXT PRIMARY KEY,
			uetr TEXT NOT NULL,
			disposition TEXT NOT NULL,
			review_reason TEXT NOT NULL DEFAULT '',
			report TEXT NOT NULL,
			processed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_uetr ON cases(uetr)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_disposition ON cases(disposition)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
