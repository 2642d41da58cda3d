package engine

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/crossbank/refunder/internal/domain"
	"github.com/crossbank/refunder/internal/eligibility"
	"github.com/crossbank/refunder/internal/fx"
	"github.com/crossbank/refunder/internal/ledger"
	"github.com/crossbank/refunder/internal/reconciliation"
	"github.com/crossbank/refunder/internal/routing"
)

// Directory is the full account lookup capability the pipeline needs; the
// sqlite AccountRepo satisfies it, as do in-memory fakes in tests.
type Directory interface {
	LookupByIBAN(iban string) (*domain.CustomerAccountRecord, error)
	FCAForHolder(holderName string) (*domain.CustomerAccountRecord, error)
	NostroForCurrency(currency string) (*domain.CustomerAccountRecord, error)
	VostroAccounts() ([]domain.CustomerAccountRecord, error)
	OperatingBank() (*domain.CustomerAccountRecord, error)
}

// StatementSource provides the correspondent statement lines the matcher
// scans. D4 re-queries it after the SCR wait.
type StatementSource interface {
	NostroEntries() ([]domain.StatementEntry, error)
}

// CaseInput is one investigation: the parsed message pair plus the intake
// layer's channel flags.
type CaseInput struct {
	CaseRef  string                        `json:"case_ref"`
	Return   *domain.ParsedReturnMessage   `json:"return"`
	Original *domain.ParsedOriginalMessage `json:"original"`
	Flags    domain.ChannelFlags           `json:"flags"`
}

// Engine runs the synchronous per-case pipeline: eligibility gates, FX
// assessment, reconciliation, routing tree, operation executor. It holds no
// cross-call state; the same inputs always produce the same trace.
type Engine struct {
	directory  Directory
	statements StatementSource
	rates      fx.RateLookup
	sink       ledger.Sink
	now        func() time.Time
}

func New(directory Directory, statements StatementSource, rates fx.RateLookup, sink ledger.Sink) *Engine {
	return &Engine{
		directory:  directory,
		statements: statements,
		rates:      rates,
		sink:       sink,
		now:        time.Now,
	}
}

// WithClock pins the time source for deterministic pending dates in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ProcessCase runs one case to a disposition. The returned report is always
// complete, with the trace populated up to any failure point; the error is
// non-nil only for persistence failures, which the orchestrator owns retry
// policy for.
func (e *Engine) ProcessCase(in CaseInput) (*domain.CaseReport, error) {
	report := &domain.CaseReport{
		CaseID:        in.CaseRef,
		Operations:    []domain.AccountOperation{},
		Notifications: []domain.Notification{},
		ProcessedAt:   e.now(),
	}
	if report.CaseID == "" {
		report.CaseID = uuid.NewString()
	}
	if in.Return != nil {
		report.UETR = in.Return.UETR
	}
	if in.Return == nil || in.Original == nil {
		report.Disposition = domain.DispositionManualReview
		report.ReviewReason = "incomplete message pair"
		return report, nil
	}

	chain := eligibility.NewChain(e.directory, e.rates).WithClock(e.now)
	gateRes := chain.Evaluate(in.Return, in.Original, in.Flags)
	report.Trace = gateRes.Trace
	report.FX = gateRes.FX

	if !gateRes.Proceed {
		report.Disposition = gateRes.Disposition
		report.ReviewReason = gateRes.ReviewReason
		report.PendingUntil = gateRes.PendingUntil
		log.Printf("[engine] case %s stopped at gate %s: %s", report.CaseID, gateRes.FailedGate, gateRes.ReviewReason)
		return report, nil
	}

	match, err := e.matchNostro(in.Return)
	if err != nil {
		report.Disposition = domain.DispositionManualReview
		report.ReviewReason = "statement ledger unavailable"
		report.Error = err.Error()
		return report, nil
	}
	report.Reconciliation = &match

	tree := routing.NewTree(e.directory)
	routeRes, err := tree.Route(&routing.Input{
		Return:   in.Return,
		Original: in.Original,
		Flags:    in.Flags,
		Match:    match,
		Rematch:  func() (domain.MatchResult, error) { return e.matchNostro(in.Return) },
		CaseRef:  report.CaseID,
	})
	if routeRes != nil {
		report.Trace = append(report.Trace, routeRes.Trace...)
		report.Notifications = append(report.Notifications, routeRes.Notifications...)
	}
	if err != nil {
		// Fatal to this run only: no operations are committed.
		report.Disposition = domain.DispositionManualReview
		report.ReviewReason = err.Error()
		report.Error = err.Error()
		log.Printf("[engine] case %s routing failed: %v", report.CaseID, err)
		return report, nil
	}

	applied, err := ledger.NewExecutor(e.sink).Apply(routeRes.Operations)
	if err != nil {
		// Persistence failures are surfaced as-is; the engine does not retry.
		report.Disposition = domain.DispositionManualReview
		report.ReviewReason = "ledger update failed"
		report.Error = err.Error()
		return report, err
	}

	report.Operations = applied
	report.Disposition = routeRes.Disposition
	log.Printf("[engine] case %s closed: %s, %d operations, %d notifications",
		report.CaseID, report.Disposition, len(applied), len(report.Notifications))
	return report, nil
}

func (e *Engine) matchNostro(ret *domain.ParsedReturnMessage) (domain.MatchResult, error) {
	entries, err := e.statements.NostroEntries()
	if err != nil {
		return domain.MatchResult{Type: domain.MatchNone}, err
	}
	return reconciliation.Match(ret.EndToEndID, ret.UETR, ret.ReturnedAmount, ret.ReturnedCurrency, entries), nil
}
