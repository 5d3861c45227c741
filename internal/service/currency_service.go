package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/worldinfo/backend/internal/domain"
	"github.com/worldinfo/backend/pkg/utils"
)

// CurrencyService converts amounts at the live rate. Rates are fetched on
// every call and never cached.
type CurrencyService struct {
	apiKey  string
	baseURL string
	client  JSONGetter
}

// NewCurrencyService creates a new currency service
func NewCurrencyService(apiKey, baseURL string, client JSONGetter) *CurrencyService {
	return &CurrencyService{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// LatestRatesResponse represents the freecurrencyapi /latest payload
type LatestRatesResponse struct {
	Data map[string]float64 `json:"data"`
}

// Rate returns how many units of pair.To one unit of pair.From buys
func (s *CurrencyService) Rate(ctx context.Context, pair domain.CurrencyPair) (float64, error) {
	q := url.Values{}
	q.Set("apikey", s.apiKey)
	q.Set("base_currency", pair.From)
	q.Set("currencies", pair.To)

	var rates LatestRatesResponse
	if err := s.client.GetJSON(ctx, s.baseURL+"/latest?"+q.Encode(), &rates); err != nil {
		return 0, fmt.Errorf("currency: failed to fetch %s rate: %w", pair, err)
	}

	rate, ok := rates.Data[pair.To]
	if !ok {
		return 0, fmt.Errorf("currency: %w", s.client.Malformed("no %s rate in response", pair.To))
	}
	return rate, nil
}

// Convert multiplies amount by the live rate, rounding to 2 decimal places.
// raw is echoed back untouched.
func (s *CurrencyService) Convert(ctx context.Context, pair domain.CurrencyPair, raw string, amount decimal.Decimal) (domain.ConversionResult, error) {
	rate, err := s.Rate(ctx, pair)
	if err != nil {
		return domain.ConversionResult{}, err
	}

	return domain.ConversionResult{
		From:            pair.From,
		To:              pair.To,
		Amount:          raw,
		ConvertedAmount: utils.MultiplyFixed(amount, rate, 2),
		ConversionRate:  rate,
	}, nil
}
