package fx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossbank/refunder/internal/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestAssessDirectAUD(t *testing.T) {
	a, err := Assess(d("1000.00"), "AUD", d("950.00"), "AUD", DefaultStaticRates)
	require.NoError(t, err)

	assert.Equal(t, domain.FXDirect, a.Method)
	assert.True(t, a.LossAUD.Equal(d("50.00")))
	assert.False(t, a.ExceedsThreshold)
}

func TestAssessViaReference(t *testing.T) {
	// USD at 1.5132: original 1000 USD = 1513.20 AUD, returned 900 USD = 1361.88 AUD.
	a, err := Assess(d("1000.00"), "USD", d("900.00"), "USD", DefaultStaticRates)
	require.NoError(t, err)

	assert.Equal(t, domain.FXViaReference, a.Method)
	assert.True(t, a.OriginalAUD.Equal(d("1513.2000")), "got %s", a.OriginalAUD)
	assert.True(t, a.LossAUD.Equal(d("151.3200")), "got %s", a.LossAUD)
	assert.False(t, a.ExceedsThreshold)
}

func TestAssessThresholdBoundary(t *testing.T) {
	// Loss of exactly 300.00 is within limit; 300.01 is not.
	within, err := Assess(d("1300.00"), "AUD", d("1000.00"), "AUD", DefaultStaticRates)
	require.NoError(t, err)
	assert.True(t, within.LossAUD.Equal(d("300.00")))
	assert.False(t, within.ExceedsThreshold)

	over, err := Assess(d("1300.01"), "AUD", d("1000.00"), "AUD", DefaultStaticRates)
	require.NoError(t, err)
	assert.True(t, over.LossAUD.Equal(d("300.01")))
	assert.True(t, over.ExceedsThreshold)
}

func TestAssessNegativeLossFlooredAtZero(t *testing.T) {
	a, err := Assess(d("900.00"), "AUD", d("1000.00"), "AUD", DefaultStaticRates)
	require.NoError(t, err)
	assert.True(t, a.LossAUD.IsZero())
	assert.False(t, a.ExceedsThreshold)
}

func TestAssessRateUnavailable(t *testing.T) {
	_, err := Assess(d("100"), "XXX", d("100"), "XXX", DefaultStaticRates)
	require.Error(t, err)

	var rateErr *RateUnavailableError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, "XXX", rateErr.Currency)
}
