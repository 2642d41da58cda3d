package reconciliation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

var (
	trnPattern  = regexp.MustCompile(`/TRN/([^/]+)`)
	uetrPattern = regexp.MustCompile(`/UETR/([^/]+)`)
)

// ExtractTRN pulls the transaction reference out of an MT940-style free-text
// reference field.
func ExtractTRN(reference string) string {
	if m := trnPattern.FindStringSubmatch(reference); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ExtractUETR pulls the UETR out of an MT940-style free-text reference field.
func ExtractUETR(reference string) string {
	if m := uetrPattern.FindStringSubmatch(reference); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// Match scans statement entries for a credit corresponding to the returned
// payment. EXACT requires the reference tags and the :61:-equivalent amount
// line (amount + currency) to match jointly; PARTIAL requires the reference
// tags only. Tie-break is deterministic: EXACT beats PARTIAL, and among
// equal-quality candidates the earliest value date wins.
func Match(returnRef, uetr string, amount decimal.Decimal, currency string, entries []domain.StatementEntry) domain.MatchResult {
	var exact, partial *domain.StatementEntry

	for i := range entries {
		entry := &entries[i]
		if entry.Side != domain.SideCredit {
			continue
		}
		if !referencesReturn(entry.Reference, returnRef, uetr) {
			continue
		}

		if entry.Amount.Equal(amount) && entry.Currency == currency {
			if exact == nil || entry.ValueDate.Before(exact.ValueDate) {
				exact = entry
			}
			continue
		}
		if partial == nil || entry.ValueDate.Before(partial.ValueDate) {
			partial = entry
		}
	}

	switch {
	case exact != nil:
		return domain.MatchResult{Found: true, Type: domain.MatchExact, Entry: exact}
	case partial != nil:
		return domain.MatchResult{Found: true, Type: domain.MatchPartial, Entry: partial}
	default:
		return domain.MatchResult{Found: false, Type: domain.MatchNone}
	}
}

func referencesReturn(reference, returnRef, uetr string) bool {
	entryRef := ExtractTRN(reference)
	entryUETR := ExtractUETR(reference)
	if entryRef == "" && entryUETR == "" {
		return false
	}
	if entryRef != "" && entryRef != returnRef {
		return false
	}
	if entryUETR != "" && entryUETR != uetr {
		return false
	}
	return true
}
