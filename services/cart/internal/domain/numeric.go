package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a line can hold.
const MaxQuantity = math.MaxInt32

// leadingNumber matches the numeric prefix a lenient float parser accepts
// once everything but digits and dots is gone.
var leadingNumber = regexp.MustCompile(`^[0-9]*(\.[0-9]*)?`)

// RepairPrice coerces a loosely typed price into a finite non-negative
// decimal. Strings keep only their digits and dots, then their leading
// number, so "12.99 USD", "$12.99" and "12.99.1" all give 12.99. Anything that still cannot be
// parsed, and any negative or non-finite number, becomes zero.
func RepairPrice(v any) decimal.Decimal {
	var d decimal.Decimal
	switch p := v.(type) {
	case decimal.Decimal:
		d = p
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(p)
	case int:
		d = decimal.NewFromInt(int64(p))
	case int64:
		d = decimal.NewFromInt(p)
	case json.Number:
		parsed, err := decimal.NewFromString(p.String())
		if err != nil {
			return RepairPrice(p.String())
		}
		d = parsed
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, p)
		num := strings.TrimSuffix(leadingNumber.FindString(cleaned), ".")
		if strings.HasPrefix(num, ".") {
			num = "0" + num
		}
		parsed, err := decimal.NewFromString(num)
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ClampQuantity maps negative quantities to zero and caps the rest at
// MaxQuantity.
func ClampQuantity(q int) int {
	switch {
	case q < 0:
		return 0
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}

// AddQuantity sums two clamped quantities, saturating at MaxQuantity.
func AddQuantity(a, b int) int {
	a, b = ClampQuantity(a), ClampQuantity(b)
	if a > MaxQuantity-b {
		return MaxQuantity
	}
	return a + b
}

// ParseQuantity coerces a loosely typed quantity to a non-negative int.
// Fractions are truncated toward zero; non-numeric input gives zero.
func ParseQuantity(v any) int {
	var f float64
	switch q := v.(type) {
	case int:
		return ClampQuantity(q)
	case float64:
		f = q
	case json.Number:
		parsed, err := q.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= MaxQuantity {
		return MaxQuantity
	}
	return int(f)
}
