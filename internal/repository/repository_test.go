package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbank/refunder/internal/domain"
	"github.com/crossbank/refunder/internal/fx"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAccountRepoDirectoryLookups(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepo(db)

	accounts := []domain.CustomerAccountRecord{
		{
			AccountNumber: "AU123456789",
			HolderName:    "ACME Trading Pty Ltd",
			Type:          domain.AccountCustomer,
			Currency:      "AUD",
			Balance:       decimal.NewFromInt(5000),
			Status:        domain.StatusActive,
			LinkedFCA:     "FCA-USD-001",
			Email:         "ops@acme.example",
		},
		{
			AccountNumber: "FCA-USD-001",
			HolderName:    "ACME Trading Pty Ltd",
			Type:          domain.AccountFCA,
			Currency:      "USD",
			Balance:       decimal.NewFromInt(1000),
			Status:        domain.StatusActive,
		},
		{
			AccountNumber: "NOSTRO-USD",
			HolderName:    "Correspondent USD Nostro",
			Type:          domain.AccountNostro,
			Currency:      "USD",
			Balance:       decimal.NewFromInt(250000),
			Status:        domain.StatusActive,
			BIC:           "CHASUS33",
		},
		{
			AccountNumber:  "VOSTRO-EUR",
			HolderName:     "Hamburg Komm Bank",
			Type:           domain.AccountVostro,
			Currency:       "EUR",
			Balance:        decimal.NewFromInt(90000),
			Status:         domain.StatusActive,
			BIC:            "HKBKDEHH",
			DebitAuthority: domain.AuthorityYes,
		},
		{
			AccountNumber: "OB-SUSPENSE",
			HolderName:    "Operating Bank Suspense",
			Type:          domain.AccountOperatingBank,
			Currency:      "AUD",
			Balance:       decimal.NewFromInt(1000000),
			Status:        domain.StatusActive,
		},
	}

	n, err := repo.BulkInsert(accounts)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// re-insert is ignored, not duplicated
	n, err = repo.BulkInsert(accounts[:1])
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	cust, err := repo.LookupByIBAN("AU123456789")
	require.NoError(t, err)
	require.NotNil(t, cust)
	assert.Equal(t, "ACME Trading Pty Ltd", cust.HolderName)
	assert.Equal(t, "FCA-USD-001", cust.LinkedFCA)
	assert.True(t, cust.Balance.Equal(decimal.NewFromInt(5000)))

	missing, err := repo.LookupByIBAN("AU000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)

	fca, err := repo.FCAForHolder("ACME Trading Pty Ltd")
	require.NoError(t, err)
	require.NotNil(t, fca)
	assert.Equal(t, "FCA-USD-001", fca.AccountNumber)

	noFCA, err := repo.FCAForHolder("Nobody Holdings")
	require.NoError(t, err)
	assert.Nil(t, noFCA)

	nostro, err := repo.NostroForCurrency("USD")
	require.NoError(t, err)
	require.NotNil(t, nostro)
	assert.Equal(t, "NOSTRO-USD", nostro.AccountNumber)

	noNostro, err := repo.NostroForCurrency("EUR")
	require.NoError(t, err)
	assert.Nil(t, noNostro)

	vostros, err := repo.VostroAccounts()
	require.NoError(t, err)
	require.Len(t, vostros, 1)
	assert.Equal(t, domain.AuthorityYes, vostros[0].DebitAuthority)

	ob, err := repo.OperatingBank()
	require.NoError(t, err)
	require.NotNil(t, ob)
	assert.Equal(t, "OB-SUSPENSE", ob.AccountNumber)
}

func TestAccountRepoFCAForHolderSkipsClosed(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepo(db)

	require.NoError(t, repo.Insert(&domain.CustomerAccountRecord{
		AccountNumber: "FCA-GBP-009",
		HolderName:    "Beta Imports",
		Type:          domain.AccountFCA,
		Currency:      "GBP",
		Balance:       decimal.Zero,
		Status:        domain.StatusClosed,
	}))

	fca, err := repo.FCAForHolder("Beta Imports")
	require.NoError(t, err)
	assert.Nil(t, fca)
}

func TestAccountRepoNostroPrefersActive(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepo(db)

	require.NoError(t, repo.Insert(&domain.CustomerAccountRecord{
		AccountNumber: "NOSTRO-JPY-OLD",
		HolderName:    "Tokyo Nostro (closed)",
		Type:          domain.AccountNostro,
		Currency:      "JPY",
		Balance:       decimal.Zero,
		Status:        domain.StatusClosed,
	}))
	require.NoError(t, repo.Insert(&domain.CustomerAccountRecord{
		AccountNumber: "NOSTRO-JPY",
		HolderName:    "Tokyo Nostro",
		Type:          domain.AccountNostro,
		Currency:      "JPY",
		Balance:       decimal.NewFromInt(100),
		Status:        domain.StatusActive,
	}))

	nostro, err := repo.NostroForCurrency("JPY")
	require.NoError(t, err)
	require.NotNil(t, nostro)
	assert.Equal(t, "NOSTRO-JPY", nostro.AccountNumber)
}

func TestAccountRepoBalanceRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepo(db)

	require.NoError(t, repo.Insert(&domain.CustomerAccountRecord{
		AccountNumber: "AU555",
		HolderName:    "Gamma",
		Type:          domain.AccountCustomer,
		Currency:      "AUD",
		Balance:       decimal.RequireFromString("1234.56"),
		Status:        domain.StatusActive,
	}))

	bal, err := repo.ReadBalance("AU555")
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("1234.56")))

	// negative balances are stored as-is
	require.NoError(t, repo.WriteBalance("AU555", decimal.RequireFromString("-300.10")))
	bal, err = repo.ReadBalance("AU555")
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("-300.10")))

	_, err = repo.ReadBalance("AU999")
	assert.Error(t, err)
	assert.Error(t, repo.WriteBalance("AU999", decimal.Zero))
}

func TestStatementRepoNostroEntriesOrdered(t *testing.T) {
	db := openTestDB(t)
	repo := NewStatementRepo(db)

	entries := []domain.StatementEntry{
		{
			StatementID: "STMT-002",
			Ledger:      domain.LedgerNostro,
			ValueDate:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
			Currency:    "USD",
			Amount:      decimal.NewFromInt(980),
			Side:        domain.SideCredit,
			Reference:   "/TRN/E2E-REF-1//UETR/123e4567-e89b-12d3-a456-426614174000/",
		},
		{
			StatementID: "STMT-001",
			Ledger:      domain.LedgerNostro,
			ValueDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Currency:    "USD",
			Amount:      decimal.NewFromInt(980),
			Side:        domain.SideCredit,
			Reference:   "/TRN/E2E-REF-1/",
		},
		{
			StatementID: "STMT-V01",
			Ledger:      domain.LedgerVostro,
			ValueDate:   time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			Currency:    "EUR",
			Amount:      decimal.NewFromInt(500),
			Side:        domain.SideDebit,
			Reference:   "/TRN/OTHER/",
		},
	}

	n, err := repo.BulkInsert(entries)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	nostro, err := repo.NostroEntries()
	require.NoError(t, err)
	require.Len(t, nostro, 2)
	assert.Equal(t, "STMT-001", nostro[0].StatementID)
	assert.Equal(t, "STMT-002", nostro[1].StatementID)
	assert.True(t, nostro[1].Amount.Equal(decimal.NewFromInt(980)))
	assert.Equal(t, domain.SideCredit, nostro[1].Side)

	vostro, err := repo.VostroEntries()
	require.NoError(t, err)
	require.Len(t, vostro, 1)
	assert.Equal(t, "STMT-V01", vostro[0].StatementID)
}

func TestRateRepoLookup(t *testing.T) {
	db := openTestDB(t)
	repo := NewRateRepo(db)

	n, err := repo.SeedStatic(fx.DefaultStaticRates)
	require.NoError(t, err)
	assert.Equal(t, len(fx.DefaultStaticRates), n)

	rate, err := repo.Rate("USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("1.5132")))

	_, err = repo.Rate("XYZ")
	var unavailable *fx.RateUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "XYZ", unavailable.Currency)

	// upsert replaces
	require.NoError(t, repo.Upsert("USD", decimal.RequireFromString("1.6000")))
	rate, err = repo.Rate("USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("1.6000")))
}

func TestCaseRepoSaveAndQuery(t *testing.T) {
	db := openTestDB(t)
	repo := NewCaseRepo(db)

	report := &domain.CaseReport{
		CaseID: "case-001",
		UETR:   "123e4567-e89b-12d3-a456-426614174000",
		Trace: []domain.NodeResult{
			{Node: "D1", Outcome: domain.OutcomeYes, Rationale: "return message received"},
		},
		Disposition: domain.DispositionAutoRefund,
		ProcessedAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(report))

	require.NoError(t, repo.Save(&domain.CaseReport{
		CaseID:       "case-002",
		UETR:         "9f2d1c3a-5e6b-47a8-9c0d-112233445566",
		Disposition:  domain.DispositionManualReview,
		ReviewReason: "payment currency is AUD",
		ProcessedAt:  time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
	}))

	got, err := repo.GetByID("case-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, report.UETR, got.UETR)
	require.Len(t, got.Trace, 1)
	assert.Equal(t, "D1", got.Trace[0].Node)

	missing, err := repo.GetByID("case-404")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, total, err := repo.List(CaseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, all, 2)
	// newest first
	assert.Equal(t, "case-002", all[0].CaseID)

	reviews, total, err := repo.List(CaseFilter{Disposition: string(domain.DispositionManualReview)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, "payment currency is AUD", reviews[0].ReviewReason)

	stats, err := repo.GetDispositionStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.AutoRefunded)
	assert.Equal(t, 1, stats.ManualReview)
	assert.Equal(t, 0, stats.Pending)
}
