// Package format renders prices, mileage amounts, and balance deltas
// for human-facing output.
package format

import (
	"fmt"
	"math"
)

// FormatPrice renders a cash amount with its currency code, e.g.
// "USD 1,816.00".
func FormatPrice(amount float64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := math.Floor(amount)
	cents := int(math.Round((amount - whole) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	intStr := fmt.Sprintf("%.0f", whole)
	formatted := fmt.Sprintf("%s %s.%02d", currency, addThousandsSeparator(intStr, ","), cents)
	if negative {
		formatted = "-" + formatted
	}
	return formatted
}

// FormatMiles renders a mileage amount, e.g. "82,100 miles".
func FormatMiles(miles int) string {
	negative := miles < 0
	if negative {
		miles = -miles
	}
	formatted := addThousandsSeparator(fmt.Sprintf("%d", miles), ",") + " miles"
	if negative {
		formatted = "-" + formatted
	}
	return formatted
}

// FormatDelta renders a signed balance change, e.g. "+12,710" or
// "-5,000".
func FormatDelta(delta int) string {
	if delta < 0 {
		return "-" + addThousandsSeparator(fmt.Sprintf("%d", -delta), ",")
	}
	return "+" + addThousandsSeparator(fmt.Sprintf("%d", delta), ",")
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
