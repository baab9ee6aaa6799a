package checkout

import (
	"strconv"
	"strings"
)

const (
	// CardNumberLength is the only accepted card number length for the
	// simulated card method.
	CardNumberLength = 16

	// The simulated payment system accepts no card expiring before
	// February 2026. This cutoff is fixed policy, deliberately not
	// relative to the current date.
	MinExpiryMonth = 2
	MinExpiryYear  = 26
)

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCardNumber strips non-digits and caps at 16 digits.
func NormalizeCardNumber(v string) string {
	d := digitsOnly(v)
	if len(d) > CardNumberLength {
		d = d[:CardNumberLength]
	}
	return d
}

// NormalizeCVV strips non-digits and caps at 4 digits.
func NormalizeCVV(v string) string {
	d := digitsOnly(v)
	if len(d) > 4 {
		d = d[:4]
	}
	return d
}

// MaskExpiry applies the live MM/YY input mask to a raw keystroke
// value. A lone digit above 1 is taken as the month tens ("2" becomes
// "02"), a two-digit month is coerced into 01..12, and a slash is
// inserted once more than two digits are present. The result is always
// a valid partial or complete MM/YY shape.
func MaskExpiry(v string) string {
	raw := digitsOnly(v)

	if len(raw) == 1 && raw[0] > '1' {
		raw = "0" + raw
	} else if len(raw) == 2 {
		month, _ := strconv.Atoi(raw)
		if month == 0 {
			raw = "01"
		} else if month > 12 {
			raw = "12"
		}
	}

	if len(raw) > 4 {
		raw = raw[:4]
	}
	if len(raw) > 2 {
		return raw[:2] + "/" + raw[2:]
	}
	return raw
}

// ExpiryValid reports whether a complete MM/YY expiry passes the fixed
// 02/26 cutoff. Incomplete values and months outside 1..12 fail.
func ExpiryValid(expiry string) bool {
	if len(expiry) != 5 || expiry[2] != '/' {
		return false
	}

	month, err := strconv.Atoi(expiry[:2])
	if err != nil {
		return false
	}
	year, err := strconv.Atoi(expiry[3:])
	if err != nil {
		return false
	}

	if month < 1 || month > 12 {
		return false
	}
	if year < MinExpiryYear {
		return false
	}
	if year == MinExpiryYear && month < MinExpiryMonth {
		return false
	}
	return true
}

// IsCardValid is the reactive submit-enable predicate: full number,
// complete MM/YY, 3-4 digit CVV and a passing expiry, all at once. The
// submit path re-checks each field independently for specific messages.
func IsCardValid(number, expiry, cvv string) bool {
	if len(number) != CardNumberLength {
		return false
	}
	if len(expiry) != 5 || !strings.Contains(expiry, "/") {
		return false
	}
	if len(cvv) < 3 || len(cvv) > 4 {
		return false
	}
	return ExpiryValid(expiry)
}
