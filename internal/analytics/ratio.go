package analytics

import "math"

// ratioPct returns num/den as a percentage rounded to two decimals, or nil
// when the denominator is zero. Nil marshals to JSON null, matching the
// NULL a warehouse query would produce.
func ratioPct(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	pct := math.Round(float64(num)/float64(den)*10000) / 100
	return &pct
}

// ratio6 returns num/den rounded to six decimals, 0 when den is zero.
func ratio6(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round6(float64(num) / float64(den))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
