package ingestion

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

type pacs004Document struct {
	XMLName xml.Name `xml:"Document"`
	Txs     []struct {
		OrgnlEndToEndID string           `xml:"OrgnlEndToEndId"`
		OrgnlTxID       string           `xml:"OrgnlTxId"`
		OrgnlUETR       string           `xml:"OrgnlUETR"`
		ReturnedAmount  settlementAmount `xml:"RtrdIntrBkSttlmAmt"`
		Reason          struct {
			Code     string `xml:"Rsn>Cd"`
			AddtlInf string `xml:"AddtlInf"`
		} `xml:"RtrRsnInf"`
		OrgnlTxRef struct {
			Creditor     partyID   `xml:"Cdtr"`
			CreditorAcct accountID `xml:"CdtrAcct"`
			CreditorAgt  struct {
				BICFI string `xml:"FinInstnId>BICFI"`
				BIC   string `xml:"FinInstnId>BIC"`
			} `xml:"CdtrAgt"`
			DebtorAcct accountID `xml:"DbtrAcct"`
		} `xml:"OrgnlTxRef"`
		OrgnlGrpInf struct {
			MsgID string `xml:"OrgnlMsgId"`
		} `xml:"OrgnlGrpInf"`
	} `xml:"PmtRtr>TxInf"`
}

// ParsePacs004 extracts the typed fields of a payment return.
func ParsePacs004(data []byte) (*domain.ParsedReturnMessage, error) {
	var doc pacs004Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pacs.004: %w", err)
	}
	if len(doc.Txs) == 0 {
		return nil, fmt.Errorf("parse pacs.004: no TxInf block")
	}
	tx := doc.Txs[0]

	if err := validateUETR(tx.OrgnlUETR); err != nil {
		return nil, fmt.Errorf("parse pacs.004: %w", err)
	}
	uetr := tx.OrgnlUETR
	if uetr == "" {
		// Some correspondents omit OrgnlUETR; the original transaction ID
		// is the agreed fallback correlation key.
		uetr = tx.OrgnlTxID
	}

	amount, err := decimal.NewFromString(tx.ReturnedAmount.Value)
	if err != nil {
		return nil, fmt.Errorf("parse pacs.004: returned amount %q: %w", tx.ReturnedAmount.Value, err)
	}

	bic := tx.OrgnlTxRef.CreditorAgt.BICFI
	if bic == "" {
		bic = tx.OrgnlTxRef.CreditorAgt.BIC
	}

	return &domain.ParsedReturnMessage{
		UETR:             uetr,
		EndToEndID:       tx.OrgnlEndToEndID,
		CreditorName:     tx.OrgnlTxRef.Creditor.Name,
		CreditorIBAN:     tx.OrgnlTxRef.CreditorAcct.value(),
		CreditorAgentBIC: bic,
		DebtorIBAN:       tx.OrgnlTxRef.DebtorAcct.value(),
		ReturnedAmount:   amount,
		ReturnedCurrency: tx.ReturnedAmount.Ccy,
		ReasonCode:       domain.ReasonCode(tx.Reason.Code),
		ReasonText:       tx.Reason.AddtlInf,
		OriginalMsgID:    tx.OrgnlGrpInf.MsgID,
	}, nil
}

// validateUETR checks the UETR is a well-formed UUID. An empty UETR is left
// for the cross-check gate to reject; a malformed one is a parse error.
func validateUETR(uetr string) error {
	if uetr == "" {
		return nil
	}
	if _, err := uuid.Parse(uetr); err != nil {
		return fmt.Errorf("malformed UETR %q: %w", uetr, err)
	}
	return nil
}
