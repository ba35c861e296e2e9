package pricing

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// FormatMoney renders an amount with thousands separators and two decimals
func FormatMoney(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatPercent renders a markup percentage without trailing zeros
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
