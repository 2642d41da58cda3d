package fx

import "github.com/shopspring/decimal"

// StaticRates is an offline RateLookup with indicative AUD rates. It keeps
// the engine usable when no rates table has been loaded; production runs use
// the repository-backed lookup instead.
type StaticRates map[string]string

// DefaultStaticRates covers the corridors seen in return traffic.
var DefaultStaticRates = StaticRates{
	"AUD": "1.0",
	"EUR": "1.7786",
	"USD": "1.5132",
	"GBP": "1.9500",
	"JPY": "0.0101",
	"CHF": "1.7000",
	"SGD": "1.1250",
}

func (s StaticRates) Rate(currency string) (decimal.Decimal, error) {
	raw, ok := s[currency]
	if !ok {
		return decimal.Zero, &RateUnavailableError{Currency: currency}
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &RateUnavailableError{Currency: currency}
	}
	return rate, nil
}
