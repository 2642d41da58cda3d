package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

type StatementRepo struct {
	db *sql.DB
}

func NewStatementRepo(db *sql.DB) *StatementRepo {
	return &StatementRepo{db: db}
}

func (r *StatementRepo) BulkInsert(entries []domain.StatementEntry) (int, error) {
	inserted := 0
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO statement_entries
		(statement_id, ledger, value_date, currency, amount, side, description, reference)
		VALUES (?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		e := &entries[i]
		res, err := stmt.Exec(
			e.StatementID, string(e.Ledger), e.ValueDate.Format(time.RFC3339),
			e.Currency, e.Amount.String(), string(e.Side), e.Description, e.Reference,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *StatementRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM statement_entries").Scan(&count)
	return count, err
}

// NostroEntries returns every nostro statement line, oldest value date first.
// The matcher scans the whole window itself.
func (r *StatementRepo) NostroEntries() ([]domain.StatementEntry, error) {
	return r.byLedger(domain.LedgerNostro)
}

func (r *StatementRepo) VostroEntries() ([]domain.StatementEntry, error) {
	return r.byLedger(domain.LedgerVostro)
}

func (r *StatementRepo) byLedger(ledger domain.LedgerKind) ([]domain.StatementEntry, error) {
	rows, err := r.db.Query(
		statementColumns+" WHERE ledger = ? ORDER BY value_date, statement_id",
		string(ledger),
	)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()
	return collectStatements(rows)
}

type StatementFilter struct {
	Ledger   string
	Currency string
	Side     string
}

func (r *StatementRepo) List(f StatementFilter) ([]domain.StatementEntry, error) {
	var clauses []string
	var args []any
	if f.Ledger != "" {
		clauses = append(clauses, "ledger = ?")
		args = append(args, f.Ledger)
	}
	if f.Currency != "" {
		clauses = append(clauses, "currency = ?")
		args = append(args, f.Currency)
	}
	if f.Side != "" {
		clauses = append(clauses, "side = ?")
		args = append(args, f.Side)
	}

	query := statementColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY value_date, statement_id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()
	return collectStatements(rows)
}

// --- helpers ---

const statementColumns = `SELECT statement_id, ledger, value_date, currency,
	amount, side, description, reference FROM statement_entries`

func collectStatements(rows *sql.Rows) ([]domain.StatementEntry, error) {
	var entries []domain.StatementEntry
	for rows.Next() {
		var e domain.StatementEntry
		var ledger, side, amount, valueDate string

		err := rows.Scan(&e.StatementID, &ledger, &valueDate, &e.Currency,
			&amount, &side, &e.Description, &e.Reference)
		if err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}

		e.Ledger = domain.LedgerKind(ledger)
		e.Side = domain.EntrySide(side)
		e.ValueDate, _ = time.Parse(time.RFC3339, valueDate)
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}

		entries = append(entries, e)
	}
	return entries, rows.Err()
}
