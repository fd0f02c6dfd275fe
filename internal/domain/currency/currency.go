// Package currency formats USD amounts in the two display currencies.
//
// EUR figures use a fixed conversion rate. They are for display only
package currency

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

// DefaultUSDToEURRate is used when no rate is configured
const DefaultUSDToEURRate = "0.92"

// Amounts is a USD amount formatted in both display currencies
type Amounts struct {
	USD string `json:"usd"`
	EUR string `json:"eur"`
}

// Converter converts and formats USD amounts
type Converter struct {
	usdToEUR decimal.Decimal
}

// NewConverter parses the USD to EUR rate. An empty rate uses the default
func NewConverter(usdToEUR string) (*Converter, error) {
	if usdToEUR == "" {
		usdToEUR = DefaultUSDToEURRate
	}
	rate, err := decimal.NewFromString(usdToEUR)
	if err != nil {
		return nil, fmt.Errorf("failed to parse usd to eur rate %q: %w", usdToEUR, err)
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("usd to eur rate must be positive, got %s", rate)
	}
	return &Converter{usdToEUR: rate}, nil
}

// Rate returns the configured USD to EUR rate
func (c *Converter) Rate() decimal.Decimal {
	return c.usdToEUR
}

// ToEUR converts a USD amount. Non-finite input converts as 0
func (c *Converter) ToEUR(usd float64) decimal.Decimal {
	return decimal.NewFromFloat(valuation.Number(usd)).Mul(c.usdToEUR)
}

// FormatUSD formats a USD amount rounded to cents
func (c *Converter) FormatUSD(usd float64) string {
	return Format(decimal.NewFromFloat(valuation.Number(usd)), money.USD)
}

// FormatEUR converts a USD amount and formats it in EUR
func (c *Converter) FormatEUR(usd float64) string {
	return Format(c.ToEUR(usd), money.EUR)
}

// Amounts formats usd in both currencies
func (c *Converter) Amounts(usd float64) Amounts {
	return Amounts{
		USD: c.FormatUSD(usd),
		EUR: c.FormatEUR(usd),
	}
}

// Format renders amount, in major units, with the currency's symbol and
// fraction digits. Unknown codes fall back to the plain decimal
func Format(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if !minor.BigInt().IsInt64() {
		return formatLarge(minor, cur)
	}
	return money.New(minor.IntPart(), code).Display()
}

// formatLarge lays out minor units too large for go-money's int64 amounts
// the same way its Formatter does
func formatLarge(minor decimal.Decimal, cur *money.Currency) string {
	f := cur.Formatter()
	sa := minor.Abs().BigInt().String()

	if len(sa) <= f.Fraction {
		sa = strings.Repeat("0", f.Fraction-len(sa)+1) + sa
	}
	if f.Thousand != "" {
		for i := len(sa) - f.Fraction - 3; i > 0; i -= 3 {
			sa = sa[:i] + f.Thousand + sa[i:]
		}
	}
	if f.Fraction > 0 {
		sa = sa[:len(sa)-f.Fraction] + f.Decimal + sa[len(sa)-f.Fraction:]
	}
	sa = strings.Replace(f.Template, "1", sa, 1)
	sa = strings.Replace(sa, "$", f.Grapheme, 1)

	if minor.IsNegative() {
		sa = "-" + sa
	}
	return sa
}
