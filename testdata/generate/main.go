package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

// Generates accounts.json and statements.json used to seed an empty database.
func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	accounts := generateAccounts(rng)
	writeJSONFile(filepath.Join(baseDir, "accounts.json"), accounts)
	fmt.Printf("Generated %d accounts -> accounts.json\n", len(accounts))

	entries := generateStatements(rng, accounts)
	writeJSONFile(filepath.Join(baseDir, "statements.json"), entries)
	fmt.Printf("Generated %d statement entries -> statements.json\n", len(entries))

	fmt.Println("Test data generation complete.")
}

type holder struct {
	name    string
	account string
	email   string
	fcaCcy  string // empty means no FCA
	fcaAcct string
}

func generateAccounts(rng *rand.Rand) []domain.CustomerAccountRecord {
	holders := []holder{
		{name: "ACME Trading Pty Ltd", account: "06127834401", email: "payments@acmetrading.example", fcaCcy: "USD", fcaAcct: "FCA-USD-0001"},
		{name: "Southern Cross Mining Ltd", account: "06224519802", email: "treasury@scmining.example", fcaCcy: "EUR", fcaAcct: "FCA-EUR-0002"},
		{name: "Harbourview Logistics", account: "06331170903", email: "accounts@harbourview.example"},
		{name: "Kestrel Wools Export Co", account: "06442861204", email: ""},
		{name: "Tasman Fine Foods", account: "06550237705", email: "finance@tasmanfoods.example"},
		// account prefix 1200 doubles as the BSB for branch SAIT rewrites
		{name: "Westgate Engineering Group", account: "12009944806", email: "remit@westgate.example"},
	}

	var accounts []domain.CustomerAccountRecord

	for _, h := range holders {
		balance := decimal.NewFromInt(int64(1000 + rng.Intn(200000))).Round(2)
		accounts = append(accounts, domain.CustomerAccountRecord{
			AccountNumber: h.account,
			HolderName:    h.name,
			Type:          domain.AccountCustomer,
			Currency:      "AUD",
			Balance:       balance,
			Status:        domain.StatusActive,
			LinkedFCA:     h.fcaAcct,
			Email:         h.email,
		})
		if h.fcaCcy != "" {
			accounts = append(accounts, domain.CustomerAccountRecord{
				AccountNumber: h.fcaAcct,
				HolderName:    h.name,
				Type:          domain.AccountFCA,
				Currency:      h.fcaCcy,
				Balance:       decimal.NewFromInt(int64(rng.Intn(50000))).Round(2),
				Status:        domain.StatusActive,
			})
		}
	}

	// Correspondent nostros, one per settlement currency.
	nostros := []struct {
		ccy, bic, name string
	}{
		{"USD", "CHASUS33", "JPM New York USD Nostro"},
		{"EUR", "DEUTDEFF", "Deutsche Frankfurt EUR Nostro"},
		{"GBP", "BARCGB22", "Barclays London GBP Nostro"},
		{"JPY", "BOTKJPJT", "MUFG Tokyo JPY Nostro"},
		{"SGD", "DBSSSGSG", "DBS Singapore SGD Nostro"},
	}
	for _, n := range nostros {
		accounts = append(accounts, domain.CustomerAccountRecord{
			AccountNumber: "NOSTRO-" + n.ccy,
			HolderName:    n.name,
			Type:          domain.AccountNostro,
			Currency:      n.ccy,
			Balance:       decimal.NewFromInt(int64(100000 + rng.Intn(400000))).Round(2),
			Status:        domain.StatusActive,
			BIC:           n.bic,
		})
	}

	// Vostro accounts with differing standing authority.
	vostros := []struct {
		ccy, bic, name string
		authority      domain.DebitAuthority
	}{
		{"EUR", "HKBKDEHH", "Hamburg Komm Bank", domain.AuthorityYes},
		{"USD", "PNBPUS3N", "Wells Fargo NA", domain.AuthorityByRequest},
		{"GBP", "MIDLGB22", "HSBC UK", domain.AuthorityNone},
	}
	for i, v := range vostros {
		accounts = append(accounts, domain.CustomerAccountRecord{
			AccountNumber:  fmt.Sprintf("VOSTRO-%s-%02d", v.ccy, i+1),
			HolderName:     v.name,
			Type:           domain.AccountVostro,
			Currency:       v.ccy,
			Balance:        decimal.NewFromInt(int64(20000 + rng.Intn(150000))).Round(2),
			Status:         domain.StatusActive,
			BIC:            v.bic,
			DebitAuthority: v.authority,
		})
	}

	accounts = append(accounts, domain.CustomerAccountRecord{
		AccountNumber: "OB-SUSPENSE-AUD",
		HolderName:    "Operating Bank Suspense",
		Type:          domain.AccountOperatingBank,
		Currency:      "AUD",
		Balance:       decimal.NewFromInt(2000000),
		Status:        domain.StatusActive,
	})

	return accounts
}

func generateStatements(rng *rand.Rand, accounts []domain.CustomerAccountRecord) []domain.StatementEntry {
	startDate := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	var entries []domain.StatementEntry
	seq := 1

	add := func(ledger domain.LedgerKind, ccy string, amount decimal.Decimal, side domain.EntrySide, ref, desc string, dayOffset int) {
		entries = append(entries, domain.StatementEntry{
			StatementID: fmt.Sprintf("STMT-%s-%04d", ccy, seq),
			Ledger:      ledger,
			ValueDate:   startDate.AddDate(0, 0, dayOffset),
			Currency:    ccy,
			Amount:      amount,
			Side:        side,
			Description: desc,
			Reference:   ref,
		})
		seq++
	}

	// Returned payments credited back to our nostros, tagged with /TRN/ and
	// /UETR/ so the matcher can find them. The first UETR is the one the
	// sample pacs.004 documents carry.
	returns := []struct {
		ccy  string
		e2e  string
		uetr string
		amt  string
		day  int
	}{
		{"USD", "E2E-REF-77001", "123e4567-e89b-12d3-a456-426614174000", "980.00", 7},
		{"EUR", "E2E-REF-77002", uuid.NewString(), "14890.50", 8},
		{"GBP", "E2E-REF-77003", uuid.NewString(), "2400.00", 9},
		{"JPY", "E2E-REF-77004", uuid.NewString(), "185000", 9},
	}
	for _, r := range returns {
		amt := decimal.RequireFromString(r.amt)
		ref := fmt.Sprintf("/TRN/%s//UETR/%s/", r.e2e, r.uetr)
		add(domain.LedgerNostro, r.ccy, amt, domain.SideCredit, ref, "RETURN OF FUNDS", r.day)
	}

	// Unrelated traffic so the matcher has noise to skip over.
	for i := 0; i < 30; i++ {
		ccy := []string{"USD", "EUR", "GBP", "JPY", "SGD"}[rng.Intn(5)]
		amt := decimal.NewFromInt(int64(100 + rng.Intn(50000))).Round(2)
		side := domain.SideCredit
		if rng.Float64() < 0.4 {
			side = domain.SideDebit
		}
		ref := fmt.Sprintf("/TRN/OUT-%05d/", 10000+rng.Intn(90000))
		add(domain.LedgerNostro, ccy, amt, side, ref, "CUSTOMER TRANSFER", rng.Intn(10))
	}

	// A few vostro lines for the correspondent accounts.
	for _, a := range accounts {
		if a.Type != domain.AccountVostro {
			continue
		}
		amt := decimal.NewFromInt(int64(500 + rng.Intn(20000))).Round(2)
		ref := fmt.Sprintf("/TRN/VST-%05d/", 10000+rng.Intn(90000))
		add(domain.LedgerVostro, a.Currency, amt, domain.SideCredit, ref, "COVER RECEIVED "+a.HolderName, rng.Intn(10))
	}

	return entries
}

func writeJSONFile(path string, v any) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
}

func findTestdataDir() string {
	candidates := []string{
		"testdata",
		"./testdata",
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	// Fallback.
	return "testdata"
}
