package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Insert(acct *domain.CustomerAccountRecord) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO accounts
		(account_number, holder_name, type, currency, balance, status,
		 bic, debit_authority, linked_fca, email)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		acct.AccountNumber, acct.HolderName, string(acct.Type), acct.Currency,
		acct.Balance.String(), string(acct.Status), acct.BIC,
		string(acct.DebitAuthority), acct.LinkedFCA, acct.Email,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepo) BulkInsert(accts []domain.CustomerAccountRecord) (int, error) {
	inserted := 0
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO accounts
		(account_number, holder_name, type, currency, balance, status,
		 bic, debit_authority, linked_fca, email)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range accts {
		a := &accts[i]
		res, err := stmt.Exec(
			a.AccountNumber, a.HolderName, string(a.Type), a.Currency,
			a.Balance.String(), string(a.Status), a.BIC,
			string(a.DebitAuthority), a.LinkedFCA, a.Email,
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

func (r *AccountRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, err
}

// LookupByIBAN returns the account keyed by the given number, or nil when the
// directory has no such account.
func (r *AccountRepo) LookupByIBAN(iban string) (*domain.CustomerAccountRecord, error) {
	row := r.db.QueryRow(accountColumns+" WHERE account_number = ?", iban)
	return scanAccountOptional(row)
}

// FCAForHolder returns the foreign currency account held under the exact same
// name, or nil when the holder has none. Closed FCAs do not count.
func (r *AccountRepo) FCAForHolder(holderName string) (*domain.CustomerAccountRecord, error) {
	row := r.db.QueryRow(
		accountColumns+" WHERE type = ? AND holder_name = ? AND status = ? LIMIT 1",
		string(domain.AccountFCA), holderName, string(domain.StatusActive),
	)
	return scanAccountOptional(row)
}

// NostroForCurrency returns the nostro account for a currency. An active
// account wins; if every nostro in that currency is closed the closed one is
// still returned, since suspense postings land there regardless.
func (r *AccountRepo) NostroForCurrency(currency string) (*domain.CustomerAccountRecord, error) {
	row := r.db.QueryRow(
		accountColumns+` WHERE type = ? AND currency = ?
		ORDER BY CASE status WHEN 'Active' THEN 0 ELSE 1 END LIMIT 1`,
		string(domain.AccountNostro), currency,
	)
	return scanAccountOptional(row)
}

func (r *AccountRepo) VostroAccounts() ([]domain.CustomerAccountRecord, error) {
	rows, err := r.db.Query(accountColumns+" WHERE type = ? ORDER BY account_number",
		string(domain.AccountVostro))
	if err != nil {
		return nil, fmt.Errorf("query vostros: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// OperatingBank returns the single operating bank suspense account.
func (r *AccountRepo) OperatingBank() (*domain.CustomerAccountRecord, error) {
	row := r.db.QueryRow(accountColumns+" WHERE type = ? LIMIT 1",
		string(domain.AccountOperatingBank))
	return scanAccountOptional(row)
}

type AccountFilter struct {
	Type     string
	Currency string
	Status   string
}

func (r *AccountRepo) List(f AccountFilter) ([]domain.CustomerAccountRecord, error) {
	var clauses []string
	var args []any
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if f.Currency != "" {
		clauses = append(clauses, "currency = ?")
		args = append(args, f.Currency)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}

	query := accountColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY account_number"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ReadBalance and WriteBalance let the operation executor treat the accounts
// table as its balance store.

func (r *AccountRepo) ReadBalance(accountNumber string) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRow("SELECT balance FROM accounts WHERE account_number = ?",
		accountNumber).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("account %s not found", accountNumber)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read balance: %w", err)
	}
	bal, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
	}
	return bal, nil
}

func (r *AccountRepo) WriteBalance(accountNumber string, balance decimal.Decimal) error {
	res, err := r.db.Exec("UPDATE accounts SET balance = ? WHERE account_number = ?",
		balance.String(), accountNumber)
	if err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	if ra, _ := res.RowsAffected(); ra == 0 {
		return fmt.Errorf("account %s not found", accountNumber)
	}
	return nil
}

// --- helpers ---

const accountColumns = `SELECT account_number, holder_name, type, currency,
	balance, status, bic, debit_authority, linked_fca, email FROM accounts`

func scanAccountOptional(row *sql.Row) (*domain.CustomerAccountRecord, error) {
	acct, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func collectAccounts(rows *sql.Rows) ([]domain.CustomerAccountRecord, error) {
	var accts []domain.CustomerAccountRecord
	for rows.Next() {
		acct, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accts = append(accts, *acct)
	}
	return accts, rows.Err()
}

func scanAccount(scan func(...any) error) (*domain.CustomerAccountRecord, error) {
	var a domain.CustomerAccountRecord
	var acctType, status, authority, balance string

	err := scan(
		&a.AccountNumber, &a.HolderName, &acctType, &a.Currency,
		&balance, &status, &a.BIC, &authority, &a.LinkedFCA, &a.Email,
	)
	if err != nil {
		return nil, err
	}

	a.Type = domain.AccountType(acctType)
	a.Status = domain.AccountStatus(status)
	a.DebitAuthority = domain.DebitAuthority(authority)
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}

	return &a, nil
}
