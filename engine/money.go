package engine

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands grouping and exactly two
// decimals, e.g. 230000 -> "230,000.00". No currency symbol is added.
func FormatMoney(amount float64) string {
	return moneyPrinter.Sprintf("%.2f", amount)
}

// roundCents rounds to the nearest cent.
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
