package domain

import "github.com/shopspring/decimal"

// ReasonCode is an ISO 20022 return reason code from a pacs.004 RtrRsnInf block.
type ReasonCode string

const (
	ReasonIncorrectAccount  ReasonCode = "AC01"
	ReasonAccountClosed     ReasonCode = "AC04"
	ReasonNotSpecified      ReasonCode = "MS03"
	ReasonWrongCurrency     ReasonCode = "CURR"
	ReasonChargesNoReturn   ReasonCode = "CHRG"
	ReasonValueDate         ReasonCode = "VALU"
	ReasonInternalPolicy    ReasonCode = "POLY"
	ReasonCorrespondent     ReasonCode = "CORR"
	ReasonReturnedToFCA     ReasonCode = "FCA"
)

// ReasonInfo describes how a return reason code is handled downstream.
type ReasonInfo struct {
	Label              string `json:"label"`
	AutoRefundEligible bool   `json:"auto_refund_eligible"`
}

var reasonTable = map[ReasonCode]ReasonInfo{
	ReasonIncorrectAccount: {"Incorrect Account Number", true},
	ReasonAccountClosed:    {"Account Closed", true},
	ReasonNotSpecified:     {"Reason Not Specified", false},
	ReasonWrongCurrency:    {"Wrong Currency", false},
	ReasonChargesNoReturn:  {"Charges Applied - No Return", false},
	ReasonValueDate:        {"Value Date Issue", true},
	ReasonInternalPolicy:   {"Internal Policy", false},
	ReasonCorrespondent:    {"Correspondent Issue", true},
	ReasonReturnedToFCA:    {"Returned to FCA Account", true},
}

// Describe returns the handling metadata for a reason code. Unknown codes map
// to a non-eligible "Unknown" entry rather than an error.
func (c ReasonCode) Describe() ReasonInfo {
	if info, ok := reasonTable[c]; ok {
		return info
	}
	return ReasonInfo{Label: "Unknown", AutoRefundEligible: false}
}

// ParsedReturnMessage holds the typed fields of a pacs.004 payment return.
// Immutable once parsed; one per investigation.
type ParsedReturnMessage struct {
	UETR             string          `json:"uetr"`
	EndToEndID       string          `json:"end_to_end_id"`
	CreditorName     string          `json:"creditor_name,omitempty"`
	CreditorIBAN     string          `json:"creditor_iban,omitempty"`
	CreditorAgentBIC string          `json:"creditor_agent_bic,omitempty"`
	DebtorIBAN       string          `json:"debtor_iban,omitempty"`
	ReturnedAmount   decimal.Decimal `json:"returned_amount"`
	ReturnedCurrency string          `json:"returned_currency"`
	ReasonCode       ReasonCode      `json:"reason_code"`
	ReasonText       string          `json:"reason_text,omitempty"`
	OriginalMsgID    string          `json:"original_msg_id,omitempty"`
}

// ParsedOriginalMessage holds the typed fields of the originating pacs.008
// credit transfer. Its UETR must equal the return message's UETR; a mismatch
// fails the eligibility gate chain.
type ParsedOriginalMessage struct {
	UETR       string          `json:"uetr"`
	EndToEndID string          `json:"end_to_end_id"`
	DebtorName string          `json:"debtor_name,omitempty"`
	DebtorIBAN string          `json:"debtor_iban"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}
