package domain

// CurrencyPair is a directed conversion, e.g. USD -> EUR
type CurrencyPair struct {
	From string
	To   string
}

var (
	USDToEUR = CurrencyPair{From: "USD", To: "EUR"}
	JPYToGBP = CurrencyPair{From: "JPY", To: "GBP"}
)

func (p CurrencyPair) String() string {
	return p.From + " to " + p.To
}

// ConversionResult is the outcome of converting an amount at the live rate.
// Amount echoes the caller's input untouched.
type ConversionResult struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Amount          string  `json:"amount"`
	ConvertedAmount string  `json:"convertedAmount"`
	ConversionRate  float64 `json:"conversionRate"`
}
