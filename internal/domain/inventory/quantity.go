package inventory

import "math"

// AddQuantity suma dos cantidades; ok=false si el resultado desborda int64.
func AddQuantity(a, b int64) (sum int64, ok bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}
