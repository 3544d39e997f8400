package domain

// NationalIDLength is the length of a citizen identity card (CCCD) number.
const NationalIDLength = 12

// ValidateDiscount reports whether input looks like a national id number:
// exactly twelve decimal digits. The check is local; no identity service is
// consulted.
func ValidateDiscount(input string) bool {
	if len(input) != NationalIDLength {
		return false
	}
	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return false
		}
	}
	return true
}

// ApplyDiscount flags the discount when the stored input is eligible.
// An ineligible input leaves the flag false without an error.
func ApplyDiscount(s PurchaseSession) (PurchaseSession, bool) {
	if s.Status != StatusCollecting {
		return s, s.DiscountApplied
	}
	s.DiscountApplied = ValidateDiscount(s.DiscountInput)
	return s, s.DiscountApplied
}
