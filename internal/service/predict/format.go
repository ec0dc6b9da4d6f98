package predict

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tier buckets a monthly sales figure for display.
type Tier struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	TierVeryHigh = Tier{Label: "Very High Revenue", Color: "#10b981"}
	TierHigh     = Tier{Label: "High Revenue", Color: "#3b82f6"}
	TierModerate = Tier{Label: "Moderate Revenue", Color: "#f59e0b"}
	TierLow      = Tier{Label: "Low Revenue", Color: "#ef4444"}
)

// SalesTier classifies monthly sales given in thousands of naira.
func SalesTier(thousands float64) Tier {
	switch {
	case thousands >= 5000:
		return TierVeryHigh
	case thousands >= 1000:
		return TierHigh
	case thousands >= 300:
		return TierModerate
	}
	return TierLow
}

// FormatNaira renders thousands of naira as ₦1.20M, ₦850.0K or ₦900.
func FormatNaira(thousands float64) string {
	naira := thousands * 1000
	sign := ""
	if naira < 0 {
		sign = "-"
		naira = -naira
	}
	switch {
	case naira >= 1_000_000:
		return fmt.Sprintf("%s₦%.2fM", sign, naira/1_000_000)
	case naira >= 1_000:
		return sign + "₦" + groupThousands(naira/1_000, 1) + "K"
	}
	return sign + "₦" + groupThousands(naira, 0)
}

// groupThousands formats v with comma separators and prec decimals.
func groupThousands(v float64, prec int) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', prec, 64)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + frac
}
