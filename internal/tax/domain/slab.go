package domain

import "math"

// Accepted GST slabs in percent, ascending. These are ENGINE-CONSTANTS:
// voucher lines only ever carry one of these values.
var Slabs = []float64{0, 5, 12, 18, 28}

// DefaultSlab applies when a product carries no usable rate.
const DefaultSlab = 18

// Split is the per-line tax rate decomposition. Exactly one side is
// populated: CGST+SGST for intrastate supply, IGST for interstate.
type Split struct {
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
	IGST float64 `json:"igst"`
}

// NearestSlab snaps a raw rate to the closest accepted slab. Ties round
// up. Missing, NaN or negative input falls back to DefaultSlab.
func NearestSlab(raw float64) float64 {
	if math.IsNaN(raw) || raw < 0 {
		return DefaultSlab
	}
	best := Slabs[0]
	bestDist := math.Abs(raw - best)
	for _, slab := range Slabs[1:] {
		dist := math.Abs(raw - slab)
		if dist < bestDist || (dist == bestDist && slab > best) {
			best = slab
			bestDist = dist
		}
	}
	return best
}

// SplitRate decomposes an already-resolved slab for the given supply type.
// It never re-resolves: callers toggling supply type pass the slab a line
// already carries, so the resolved rate cannot drift.
func SplitRate(slab float64, intrastate bool) Split {
	if intrastate {
		half := slab / 2
		return Split{CGST: half, SGST: half}
	}
	return Split{IGST: slab}
}

// IsAcceptedSlab reports whether rate is exactly one of the accepted slabs.
func IsAcceptedSlab(rate float64) bool {
	for _, slab := range Slabs {
		if rate == slab {
			return true
		}
	}
	return false
}
