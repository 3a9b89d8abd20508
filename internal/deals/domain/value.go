package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var amountPattern = regexp.MustCompile(`\$?([\d,]+)`)

// AmountFromValue opportunistically extracts a numeric amount from a deal's
// free-text value field ("$2,000", "gift + $500", "TBD"). The extraction is
// lossy: unparseable or nil values contribute zero. Used for aggregation
// display only.
func AmountFromValue(value *string) int {
	if value == nil {
		return 0
	}

	match := amountPattern.FindStringSubmatch(*value)
	if match == nil {
		return 0
	}

	digits := strings.ReplaceAll(match[1], ",", "")
	amount, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return amount
}
