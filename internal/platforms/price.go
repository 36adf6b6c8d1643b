package platforms

import (
	"strings"

	"crosslist_backend/internal/models"

	"github.com/shopspring/decimal"
)

// ParsePrice converts raw platform price text into an amount and ISO currency
// code. The first recognized currency symbol decides the currency; with no
// symbol the currency defaults to USD. Everything except digits, the decimal
// point and a leading minus is stripped before parsing.
func ParsePrice(text string) (decimal.Decimal, string, error) {
	currency := "USD"
	for _, r := range text {
		if code, ok := models.CurrencySymbols[r]; ok {
			currency = code
			break
		}
	}

	var b strings.Builder
	for i, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, currency, nil
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, currency, err
	}
	return amount, currency, nil
}
