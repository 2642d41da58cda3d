package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind distinguishes which correspondent ledger a statement line came from.
type LedgerKind string

const (
	LedgerNostro LedgerKind = "nostro"
	LedgerVostro LedgerKind = "vostro"
)

type EntrySide string

const (
	SideDebit  EntrySide = "DR"
	SideCredit EntrySide = "CR"
)

// StatementEntry is one nostro/vostro statement line, equivalent to a SWIFT
// MT940 :61:/:86: pair. The Reference free text is expected to carry /TRN/
// and /UETR/ tags for the returned payment. Read-only to the matcher.
type StatementEntry struct {
	StatementID string          `json:"statement_id"`
	Ledger      LedgerKind      `json:"ledger"`
	ValueDate   time.Time       `json:"value_date"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Side        EntrySide       `json:"side"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference"`
}

// MatchType classifies how well a statement entry corresponds to a return.
type MatchType string

const (
	MatchExact   MatchType = "EXACT"   // reference and :61: amount line both match
	MatchPartial MatchType = "PARTIAL" // reference matches, amount line does not
	MatchNone    MatchType = "NONE"
)

// MatchResult is the reconciliation matcher's verdict for one return.
type MatchResult struct {
	Found bool            `json:"found"`
	Type  MatchType       `json:"type"`
	Entry *StatementEntry `json:"entry,omitempty"`
}
