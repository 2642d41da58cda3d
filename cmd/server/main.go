package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/crossbank/refunder/internal/api"
	"github.com/crossbank/refunder/internal/domain"
	"github.com/crossbank/refunder/internal/engine"
	"github.com/crossbank/refunder/internal/fx"
	"github.com/crossbank/refunder/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "refunder.db"
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	accountRepo := repository.NewAccountRepo(db)
	statementRepo := repository.NewStatementRepo(db)
	rateRepo := repository.NewRateRepo(db)
	caseRepo := repository.NewCaseRepo(db)

	// Seed reference data if DB is empty.
	if err := seedIfEmpty(accountRepo, statementRepo, rateRepo); err != nil {
		log.Printf("WARNING: Failed to seed reference data: %v", err)
	}

	// Create the case engine. The account repo doubles as the balance sink.
	eng := engine.New(accountRepo, statementRepo, rateRepo, accountRepo)

	// Create router.
	router := api.NewRouter(eng, caseRepo, accountRepo, statementRepo)

	log.Printf("Cross-Border Payment Refund Engine")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/cases/process")
	log.Printf("  POST   /api/v1/cases/batch")
	log.Printf("  GET    /api/v1/cases")
	log.Printf("  GET    /api/v1/cases/{id}")
	log.Printf("  GET    /api/v1/accounts")
	log.Printf("  GET    /api/v1/statements")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seedIfEmpty(accountRepo *repository.AccountRepo, statementRepo *repository.StatementRepo, rateRepo *repository.RateRepo) error {
	count, err := accountRepo.Count()
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		log.Printf("Database already has %d accounts, skipping seed", count)
		return nil
	}
	log.Println("Database is empty, seeding from testdata...")

	var accounts []domain.CustomerAccountRecord
	if err := loadJSON("accounts.json", &accounts); err != nil {
		return err
	}
	inserted, err := accountRepo.BulkInsert(accounts)
	if err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	log.Printf("Seeded %d accounts (out of %d in file)", inserted, len(accounts))

	var entries []domain.StatementEntry
	if err := loadJSON("statements.json", &entries); err != nil {
		return err
	}
	inserted, err = statementRepo.BulkInsert(entries)
	if err != nil {
		return fmt.Errorf("seed statements: %w", err)
	}
	log.Printf("Seeded %d statement entries (out of %d in file)", inserted, len(entries))

	seeded, err := rateRepo.SeedStatic(fx.DefaultStaticRates)
	if err != nil {
		return fmt.Errorf("seed rates: %w", err)
	}
	log.Printf("Seeded %d FX rates", seeded)

	return nil
}

func loadJSON(name string, v any) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		filepath.Join("testdata", name),
	}

	// Also try to find relative to the executable.
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", name),
			filepath.Join(dir, "..", "..", "testdata", name),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded %s from %s", name, path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find %s in any candidate path: %w", name, loadErr)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
