package board

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatMoney renders an amount in rupiah with Indonesian digit grouping,
// e.g. "Rp 200.000".
func FormatMoney(amount int) string {
	return message.NewPrinter(language.Indonesian).Sprintf("Rp %d", amount)
}
