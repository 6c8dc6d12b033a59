package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/stackspledge/internal/constants"
)

// TruncateAddress shortens an address to "SP1234...WXYZ"
func TruncateAddress(address string, chars int) string {
	if address == "" {
		return ""
	}
	if len(address) <= 2*chars+2 {
		return address
	}
	return fmt.Sprintf("%s...%s", address[:chars+2], address[len(address)-chars:])
}

// FormatTimestamp renders a seconds-based ledger timestamp as a short date
func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(constants.DateFormat)
}
