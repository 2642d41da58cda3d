package domain

import "github.com/shopspring/decimal"

type AccountType string

const (
	AccountCustomer      AccountType = "Customer"
	AccountFCA           AccountType = "FCA"
	AccountNostro        AccountType = "Nostro"
	AccountVostro        AccountType = "Vostro"
	AccountOperatingBank AccountType = "OperatingBank"
	AccountBranch        AccountType = "Branch"
)

type AccountStatus string

const (
	StatusActive AccountStatus = "Active"
	StatusClosed AccountStatus = "Closed"
)

// DebitAuthority is the standing authority a correspondent has granted us
// over a vostro account.
type DebitAuthority string

const (
	AuthorityYes       DebitAuthority = "Yes"
	AuthorityByRequest DebitAuthority = "By Request"
	AuthorityNone      DebitAuthority = ""
)

// CustomerAccountRecord is a directory entry for any account the refund flow
// can touch: customer and FCA accounts as well as internal nostro, vostro,
// operating-bank and branch settlement accounts.
type CustomerAccountRecord struct {
	AccountNumber  string          `json:"account_number"`
	HolderName     string          `json:"holder_name"`
	Type           AccountType     `json:"type"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	Status         AccountStatus   `json:"status"`
	BIC            string          `json:"bic,omitempty"`
	DebitAuthority DebitAuthority  `json:"debit_authority,omitempty"`
	LinkedFCA      string          `json:"linked_fca,omitempty"`
	Email          string          `json:"email,omitempty"`
}
