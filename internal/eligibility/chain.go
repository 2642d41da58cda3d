package eligibility

import (
	"fmt"
	"time"

	"github.com/crossbank/refunder/internal/domain"
	"github.com/crossbank/refunder/internal/fx"
)

// Directory is the customer/account lookup capability the gate chain needs.
type Directory interface {
	LookupByIBAN(iban string) (*domain.CustomerAccountRecord, error)
	FCAForHolder(holderName string) (*domain.CustomerAccountRecord, error)
}

// Result is the gate chain's verdict. When Proceed is false, Disposition and
// ReviewReason (or PendingUntil) are populated. The trace covers every gate
// visited, including informational ones.
type Result struct {
	Proceed      bool                 `json:"proceed"`
	Disposition  domain.Disposition   `json:"disposition,omitempty"`
	FailedGate   string               `json:"failed_gate,omitempty"`
	ReviewReason string               `json:"review_reason,omitempty"`
	PendingUntil *time.Time           `json:"pending_until,omitempty"`
	FX           *domain.FXAssessment `json:"fx,omitempty"`
	Trace        []domain.NodeResult  `json:"trace"`
}

// Chain runs the 14-step pre-flow checklist followed by the FX loss check.
type Chain struct {
	directory Directory
	rates     fx.RateLookup
	now       func() time.Time
}

func NewChain(directory Directory, rates fx.RateLookup) *Chain {
	return &Chain{directory: directory, rates: rates, now: time.Now}
}

// WithClock overrides the time source. Tests pin the clock so the pending
// date is deterministic.
func (c *Chain) WithClock(now func() time.Time) *Chain {
	c.now = now
	return c
}

func (r *Result) note(node string, outcome domain.Outcome, format string, args ...any) {
	r.Trace = append(r.Trace, domain.NodeResult{
		Node:      node,
		Outcome:   outcome,
		Rationale: fmt.Sprintf(format, args...),
	})
}

func yesNo(v bool) domain.Outcome {
	if v {
		return domain.OutcomeYes
	}
	return domain.OutcomeNo
}

// Evaluate runs cross-message validation, the 14 gates in their fixed order,
// and the FX threshold branch. Order matters: later gates assume the message
// cross-checks already passed.
//
// The checklist is deliberately asymmetric and must stay that way: the only
// hard manual-review stop is gate 4 (AUD payment). Gates 1-3 and 5-8 pass
// through into the refund process whatever their answer, and gates 9-14 are
// informational annotations.
func (c *Chain) Evaluate(ret *domain.ParsedReturnMessage, orig *domain.ParsedOriginalMessage, flags domain.ChannelFlags) *Result {
	res := &Result{}

	if verr := c.crossCheck(ret, orig, res); verr != nil {
		res.Disposition = domain.DispositionManualReview
		res.FailedGate = "cross_check"
		res.ReviewReason = verr.Error()
		return res
	}

	// 1. Payments-team rejection email. Documented quirk: a rejection email
	// routes straight into the refund process, it does not block.
	res.note("payments_team_rejection_email", yesNo(flags.PaymentsTeamRejectionEmail),
		"rejection email %s; proceeding to refund process", receivedOrNot(flags.PaymentsTeamRejectionEmail))

	// 2. Correct payment attached.
	res.note("correct_payment_attached", yesNo(flags.CorrectPaymentAttached),
		"attachment check recorded; proceeding")

	// 3. MT103 and MT202 present.
	res.note("has_mt103_and_202", yesNo(flags.HasMT103And202),
		"MT103/MT202 presence recorded; proceeding")

	// 4. AUD payment. The one hard stop in the checklist.
	res.note("is_aud_payment", yesNo(flags.IsAUDPayment),
		"payment currency %s", orig.Currency)
	if flags.IsAUDPayment {
		res.Disposition = domain.DispositionManualReview
		res.FailedGate = "is_aud_payment"
		res.ReviewReason = "AUD payment - manual review required"
		return res
	}

	// 5-8. Pass-through checks.
	res.note("amendment_previously_sent", yesNo(flags.AmendmentPreviouslySent), "amendment history recorded")
	res.note("returned_due_to_fca", yesNo(flags.ReturnedDueToFCA), "FCA return flag recorded")
	res.note("no_funds_due_to_charges", yesNo(flags.NoFundsDueToCharges), "charges flag recorded")
	res.note("return_reason_clear", yesNo(flags.ReturnReasonClear),
		"reason %s (%s)", ret.ReasonCode, ret.ReasonCode.Describe().Label)

	// 9-14. Informational gates: annotated in the trace, no routing effect.
	res.note("is_markets", yesNo(flags.IsMarkets), "informational")
	res.note("remitter_account_closed", yesNo(flags.RemitterAccountClosed), "informational")
	res.note("value_date_return", yesNo(flags.ValueDateReturn), "informational")
	res.note("iban_format_invalid", yesNo(flags.IBANFormatInvalid), "informational (OFI-advised)")
	res.note("policy_correspondent_currency_reasons",
		yesNo(flags.ReasonInternalPolicy || flags.ReasonCorrespondentIssue || flags.ReasonWrongCurrency),
		"informational")
	res.note("client_amending_instructions", yesNo(flags.ClientAmendingInstructions), "informational")

	return c.assessFX(ret, orig, res)
}

// assessFX runs the loss calculation after the gates and applies the
// threshold branch: a high loss only defers the case when the debtor has no
// FCA account to absorb it.
func (c *Chain) assessFX(ret *domain.ParsedReturnMessage, orig *domain.ParsedOriginalMessage, res *Result) *Result {
	assessment, err := fx.Assess(orig.Amount, orig.Currency, ret.ReturnedAmount, ret.ReturnedCurrency, c.rates)
	if err != nil {
		res.note("fx_loss_check", domain.OutcomeNA, "rate lookup failed: %v", err)
		res.Disposition = domain.DispositionManualReview
		res.FailedGate = "fx_loss_check"
		res.ReviewReason = "FX rate unavailable"
		return res
	}
	res.FX = assessment

	if !assessment.ExceedsThreshold {
		res.note("fx_loss_check", domain.OutcomeNo,
			"loss %s AUD within %s limit", assessment.LossAUD, fx.LossThreshold)
		res.Proceed = true
		return res
	}

	res.note("fx_loss_check", domain.OutcomeYes,
		"loss %s AUD exceeds %s limit", assessment.LossAUD, fx.LossThreshold)

	fca, err := c.directory.FCAForHolder(orig.DebtorName)
	if err != nil {
		res.Disposition = domain.DispositionManualReview
		res.FailedGate = "fx_loss_check"
		res.ReviewReason = fmt.Sprintf("FCA lookup failed: %v", err)
		return res
	}
	if fca != nil {
		// Documented override: a high FX loss does not block when the
		// debtor holds an FCA account.
		res.note("fca_account_check", domain.OutcomeYes,
			"FCA account %s found for %s; proceeding despite loss", fca.AccountNumber, orig.DebtorName)
		res.Proceed = true
		return res
	}

	pending := AddBusinessDays(c.now(), 5)
	res.note("fca_account_check", domain.OutcomeNo,
		"no FCA account for %s; pending until %s", orig.DebtorName, pending.Format("2006-01-02"))
	res.Disposition = domain.DispositionPendingNDays
	res.PendingUntil = &pending
	res.ReviewReason = fmt.Sprintf("FX loss %s AUD exceeds %s limit and no FCA account found", res.FX.LossAUD, fx.LossThreshold)
	return res
}

func (c *Chain) crossCheck(ret *domain.ParsedReturnMessage, orig *domain.ParsedOriginalMessage, res *Result) *domain.ValidationError {
	if ret.UETR == "" || orig.UETR == "" {
		res.note("cross_check", domain.OutcomeNo, "UETR missing from message pair")
		return &domain.ValidationError{Field: "uetr", Reason: "missing from message pair"}
	}
	if ret.UETR != orig.UETR {
		res.note("cross_check", domain.OutcomeNo, "UETR mismatch between pacs.004 and pacs.008")
		return &domain.ValidationError{Field: "uetr", Reason: "mismatch between pacs.004 and pacs.008"}
	}
	if ret.EndToEndID != "" && orig.EndToEndID != "" && ret.EndToEndID != orig.EndToEndID {
		res.note("cross_check", domain.OutcomeNo, "EndToEndId mismatch between pacs.004 and pacs.008")
		return &domain.ValidationError{Field: "end_to_end_id", Reason: "mismatch between pacs.004 and pacs.008"}
	}
	if ret.DebtorIBAN != "" && orig.DebtorIBAN != "" && ret.DebtorIBAN != orig.DebtorIBAN {
		res.note("cross_check", domain.OutcomeNo, "debtor IBAN mismatch between pacs.004 and pacs.008")
		return &domain.ValidationError{Field: "debtor_iban", Reason: "mismatch between pacs.004 and pacs.008"}
	}

	customer, err := c.directory.LookupByIBAN(orig.DebtorIBAN)
	if err != nil {
		res.note("cross_check", domain.OutcomeNo, "directory lookup failed: %v", err)
		return &domain.ValidationError{Field: "debtor_iban", Reason: fmt.Sprintf("directory lookup failed: %v", err)}
	}
	if customer == nil {
		res.note("cross_check", domain.OutcomeNo, "remitter account %s not in directory", orig.DebtorIBAN)
		return &domain.ValidationError{Field: "debtor_iban", Reason: "remitter account not found in directory"}
	}

	// A closed remitter account is gate 10 territory: recorded, not blocking.
	res.note("cross_check", domain.OutcomeYes,
		"messages consistent; remitter %s status %s", customer.HolderName, customer.Status)
	return nil
}

func receivedOrNot(received bool) string {
	if received {
		return "received"
	}
	return "not received"
}
