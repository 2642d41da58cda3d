package ingestion

import (
	"encoding/xml"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

// Element names are matched by local name only, which keeps the parsers
// tolerant of the pacs.*.001.08/.09/.12 namespace versions seen in traffic.

type settlementAmount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

type partyID struct {
	Name string `xml:"Nm"`
	Othr struct {
		ID string `xml:"Id"`
	} `xml:"Id>Othr"`
	OrgOthr struct {
		ID string `xml:"Id"`
	} `xml:"Id>OrgId>Othr"`
}

type accountID struct {
	IBAN string `xml:"Id>IBAN"`
	Othr string `xml:"Id>Othr>Id"`
}

func (a accountID) value() string {
	if a.IBAN != "" {
		return a.IBAN
	}
	return a.Othr
}

type pacs008Document struct {
	XMLName xml.Name `xml:"Document"`
	Txs     []struct {
		PmtID struct {
			EndToEndID string `xml:"EndToEndId"`
			TxID       string `xml:"TxId"`
			UETR       string `xml:"UETR"`
		} `xml:"PmtId"`
		Amount settlementAmount `xml:"IntrBkSttlmAmt"`
		Debtor partyID          `xml:"Dbtr"`
		Acct   accountID        `xml:"DbtrAcct"`
	} `xml:"FIToFICstmrCdtTrf>CdtTrfTxInf"`
}

// ParsePacs008 extracts the typed fields of an original credit transfer.
// The UETR falls back to TxId and the debtor IBAN to an Othr scheme
// identifier, mirroring what correspondents actually send.
func ParsePacs008(data []byte) (*domain.ParsedOriginalMessage, error) {
	var doc pacs008Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pacs.008: %w", err)
	}
	if len(doc.Txs) == 0 {
		return nil, fmt.Errorf("parse pacs.008: no CdtTrfTxInf block")
	}
	tx := doc.Txs[0]

	if err := validateUETR(tx.PmtID.UETR); err != nil {
		return nil, fmt.Errorf("parse pacs.008: %w", err)
	}
	uetr := tx.PmtID.UETR
	if uetr == "" {
		uetr = tx.PmtID.TxID
	}

	amount, err := decimal.NewFromString(tx.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("parse pacs.008: settlement amount %q: %w", tx.Amount.Value, err)
	}

	iban := tx.Acct.value()
	if iban == "" {
		iban = tx.Debtor.OrgOthr.ID
	}
	if iban == "" {
		iban = tx.Debtor.Othr.ID
	}

	return &domain.ParsedOriginalMessage{
		UETR:       uetr,
		EndToEndID: tx.PmtID.EndToEndID,
		DebtorName: tx.Debtor.Name,
		DebtorIBAN: iban,
		Amount:     amount,
		Currency:   tx.Amount.Ccy,
	}, nil
}
