package shared

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormInt reads an integer form field. Blank fields yield def; values that do
// not parse yield -1 so range validation rejects them.
func FormInt(values url.Values, key string, def int) int {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

// FormDecimal reads a money field the same way FormInt reads integers.
func FormDecimal(values url.Values, key string) decimal.Decimal {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NewFromInt(-1)
	}
	return d
}
