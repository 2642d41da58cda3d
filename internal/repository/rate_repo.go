package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/fx"
)

// RateRepo serves AUD conversion rates from the fx_rates table. It satisfies
// fx.RateLookup; a missing currency surfaces as fx.RateUnavailableError so
// the engine routes the case to manual review instead of guessing.
type RateRepo struct {
	db *sql.DB
}

func NewRateRepo(db *sql.DB) *RateRepo {
	return &RateRepo{db: db}
}

func (r *RateRepo) Rate(currency string) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRow("SELECT aud_rate FROM fx_rates WHERE currency = ?",
		currency).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, &fx.RateUnavailableError{Currency: currency}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query rate: %w", err)
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %q: %w", raw, err)
	}
	return rate, nil
}

func (r *RateRepo) Upsert(currency string, rate decimal.Decimal) error {
	_, err := r.db.Exec(
		`INSERT INTO fx_rates (currency, aud_rate) VALUES (?,?)
		ON CONFLICT(currency) DO UPDATE SET aud_rate = excluded.aud_rate`,
		currency, rate.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert rate: %w", err)
	}
	return nil
}

func (r *RateRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM fx_rates").Scan(&count)
	return count, err
}

// SeedStatic loads the static rate table used when no live feed is wired.
func (r *RateRepo) SeedStatic(rates fx.StaticRates) (int, error) {
	inserted := 0
	for ccy, raw := range rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return inserted, fmt.Errorf("parse rate %q for %s: %w", raw, ccy, err)
		}
		if err := r.Upsert(ccy, rate); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
