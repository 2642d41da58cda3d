package fx

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

// ReferenceCurrency is the currency all loss figures are expressed in.
const ReferenceCurrency = "AUD"

// LossThreshold is the auto-refund FX loss limit in reference currency units.
// A loss strictly greater than this requires the FCA-or-pending branch.
var LossThreshold = decimal.NewFromInt(300)

// RateLookup resolves an exchange rate to the reference currency: one unit of
// the given currency equals Rate(ccy) AUD.
type RateLookup interface {
	Rate(currency string) (decimal.Decimal, error)
}

// RateUnavailableError indicates no rate exists for a currency. It is never
// defaulted away; the caller routes the case to manual review instead of
// computing a wrong loss.
type RateUnavailableError struct {
	Currency string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no AUD rate available for currency %s", e.Currency)
}

// Assess converts both legs to the reference currency and classifies the
// loss against the threshold. When both legs are already AUD no conversion
// happens and the method is recorded as direct. Loss is floored at zero: a
// return larger than the original is not a loss.
func Assess(originalAmt decimal.Decimal, originalCcy string, returnedAmt decimal.Decimal, returnedCcy string, rates RateLookup) (*domain.FXAssessment, error) {
	method := domain.FXViaReference

	originalAUD, err := toReference(originalAmt, originalCcy, rates)
	if err != nil {
		return nil, err
	}
	returnedAUD, err := toReference(returnedAmt, returnedCcy, rates)
	if err != nil {
		return nil, err
	}

	if originalCcy == ReferenceCurrency && returnedCcy == ReferenceCurrency {
		method = domain.FXDirect
	}

	// Loss is computed on the converted amounts only. Subtracting raw
	// amounts across currencies is exactly the defect this guards against.
	loss := originalAUD.Sub(returnedAUD)
	if loss.IsNegative() {
		loss = decimal.Zero
	}

	return &domain.FXAssessment{
		OriginalAUD:      originalAUD,
		ReturnedAUD:      returnedAUD,
		LossAUD:          loss,
		ExceedsThreshold: loss.GreaterThan(LossThreshold),
		Method:           method,
	}, nil
}

func toReference(amount decimal.Decimal, currency string, rates RateLookup) (decimal.Decimal, error) {
	if currency == ReferenceCurrency {
		return amount, nil
	}
	rate, err := rates.Rate(currency)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}
