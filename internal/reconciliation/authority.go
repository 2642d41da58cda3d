package reconciliation

import "github.com/crossbank/refunder/internal/domain"

// AuthorityCheck is the outcome of a vostro debit-authority lookup.
type AuthorityCheck struct {
	Exists         bool                          `json:"exists"`
	Account        *domain.CustomerAccountRecord `json:"account,omitempty"`
	AuthorityType  string                        `json:"authority_type"`
	RequiresCamt29 bool                          `json:"requires_camt029"`
}

// CheckDebitAuthority decides whether the correspondent identified by the
// creditor agent BIC has granted standing debit authority over its vostro
// account in the returned currency. "By Request" authority needs a camt.029
// confirmation first and counts as no standing authority.
func CheckDebitAuthority(bic, currency string, accounts []domain.CustomerAccountRecord) AuthorityCheck {
	for i := range accounts {
		acct := &accounts[i]
		if acct.Type != domain.AccountVostro || acct.Currency != currency || acct.BIC != bic {
			continue
		}
		switch acct.DebitAuthority {
		case domain.AuthorityYes:
			return AuthorityCheck{Exists: true, Account: acct, AuthorityType: "Pre-approved"}
		case domain.AuthorityByRequest:
			return AuthorityCheck{Account: acct, AuthorityType: "By Request", RequiresCamt29: true}
		}
	}
	return AuthorityCheck{AuthorityType: "Not Found", RequiresCamt29: true}
}
