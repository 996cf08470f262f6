package domain

// ─── Tariff ─────────────────────────────────────────────────────────────────
// Prices are in cents per communication, not per unit of size. The
// comparators below are part of the price list: size 10 and 120,
// points 75, 100 and 150 and four friends each sit on a boundary.

const (
	shortSizeLimit  = 10  // size < 10 is a short communication
	mediumSizeLimit = 120 // size < 120 is a medium communication

	shortDiscountPoints  = 100 // points > 100 halves short communications
	mediumDiscountPoints = 75  // points >= 75 unlocks medium discounts
	longDiscountPoints   = 150 // points >= 150 discounts long communications

	voiceFriendDiscount = 4 // friends >= 4 discounts medium voice calls
)

// ComputeCost prices a communication of the given type and size for a
// caller holding points loyalty points and friends friends.
func ComputeCost(typ CommunicationType, size, points, friends int) Cents {
	switch {
	case size == 0:
		return 0
	case size < shortSizeLimit:
		if points > shortDiscountPoints {
			return 1
		}
		return 2
	case size < mediumSizeLimit:
		if points < mediumDiscountPoints {
			if typ == TypeSMS {
				return 6
			}
			return 12
		}
		if typ == TypeSMS {
			return 4
		}
		if friends < voiceFriendDiscount {
			return 8
		}
		return 5
	default:
		if points < longDiscountPoints {
			return 15
		}
		return 12
	}
}

// TextSize converts a message length in characters to SMS size units:
// one unit per started block of 100 characters.
func TextSize(length int) int {
	return (length + 99) / 100
}
