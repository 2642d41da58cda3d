package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeYes Outcome = "Yes"
	OutcomeNo  Outcome = "No"
	OutcomeNA  Outcome = "N/A"
)

// NodeResult is one entry of the decision trace: a routing node (D1..D9), a
// pre-flow gate, or an informational action node. The ordered trace is the
// canonical audit artifact; the full path of a run must be reproducible from
// it alone.
type NodeResult struct {
	Node      string  `json:"node"`
	Outcome   Outcome `json:"outcome"`
	Rationale string  `json:"rationale"`
}

type Disposition string

const (
	DispositionAutoRefund    Disposition = "AUTO_REFUND_PROCESSED"
	DispositionManualReview  Disposition = "MANUAL_REVIEW_REQUIRED"
	DispositionPendingNDays  Disposition = "PENDING_5_BUSINESS_DAYS"
)

// FXMethod records how the loss figure was derived.
type FXMethod string

const (
	FXDirect       FXMethod = "direct"
	FXViaReference FXMethod = "via_reference_currency"
)

// FXAssessment is the result of converting both legs to the reference
// currency (AUD) and comparing against the refund loss threshold.
type FXAssessment struct {
	OriginalAUD      decimal.Decimal `json:"original_aud"`
	ReturnedAUD      decimal.Decimal `json:"returned_aud"`
	LossAUD          decimal.Decimal `json:"loss_aud"`
	ExceedsThreshold bool            `json:"exceeds_threshold"`
	Method           FXMethod        `json:"method"`
}

type OperationType string

const (
	OpDebit  OperationType = "DEBIT"
	OpCredit OperationType = "CREDIT"
)

// AccountOperation is a single ledger mutation. The decision tree emits
// intents (before/after balances zero); the executor fills in the balances
// when it applies them. Immutable once applied.
type AccountOperation struct {
	Type          OperationType   `json:"type"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name,omitempty"`
	AccountType   AccountType     `json:"account_type"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description,omitempty"`
}

// Notification is an intent for the external comms collaborator. The engine
// never renders or sends anything itself.
type Notification struct {
	Template  string `json:"template"`
	Recipient string `json:"recipient,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Known notification templates, named after the SOP documents they map to.
const (
	TemplateRefundFCAEmail    = "refund_fca_email"
	TemplateRefundDailyList   = "refund_daily_list"
	TemplateRefundSent        = "refund_sent"
	TemplateNostroNotCredited = "nostro_not_credited"
	TemplateClientAdHoc       = "client_adhoc"
	TemplateNoEmailFullList   = "refund_no_email_full_list"
)

// ChannelFlags carries the gate and routing inputs supplied by the case
// intake layer. Field order follows the pre-flow checklist.
type ChannelFlags struct {
	PaymentsTeamRejectionEmail bool `json:"payments_team_rejection_email"`
	CorrectPaymentAttached     bool `json:"correct_payment_attached"`
	HasMT103And202             bool `json:"has_mt103_and_202"`
	IsAUDPayment               bool `json:"is_aud_payment"`
	AmendmentPreviouslySent    bool `json:"amendment_previously_sent"`
	ReturnedDueToFCA           bool `json:"returned_due_to_fca"`
	NoFundsDueToCharges        bool `json:"no_funds_due_to_charges"`
	ReturnReasonClear          bool `json:"return_reason_clear"`
	IsMarkets                  bool `json:"is_markets"`
	RemitterAccountClosed      bool `json:"remitter_account_closed"`
	ValueDateReturn            bool `json:"value_date_return"`
	IBANFormatInvalid          bool `json:"iban_format_invalid"`
	ReasonInternalPolicy       bool `json:"reason_internal_policy"`
	ReasonCorrespondentIssue   bool `json:"reason_correspondent_issue"`
	ReasonWrongCurrency        bool `json:"reason_wrong_currency"`
	ClientAmendingInstructions bool `json:"client_amending_instructions"`
	IsBranchPayment            bool `json:"is_branch_payment"`
	HasValidClientEmail        bool `json:"has_valid_client_email"`
}

// CaseReport is the sole artifact handed to reporting and notification
// collaborators. Every run, including failed ones, produces a complete
// report with the trace populated up to the failure point.
type CaseReport struct {
	CaseID         string             `json:"case_id"`
	UETR           string             `json:"uetr"`
	Trace          []NodeResult       `json:"trace"`
	FX             *FXAssessment      `json:"fx,omitempty"`
	Reconciliation *MatchResult       `json:"reconciliation,omitempty"`
	Operations     []AccountOperation `json:"operations"`
	Notifications  []Notification     `json:"notifications"`
	Disposition    Disposition        `json:"disposition"`
	ReviewReason   string             `json:"review_reason,omitempty"`
	PendingUntil   *time.Time         `json:"pending_until,omitempty"`
	Error          string             `json:"error,omitempty"`
	ProcessedAt    time.Time          `json:"processed_at"`
}
