package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearestSlab(t *testing.T) {
	cases := []struct {
		name string
		raw  float64
		want float64
	}{
		{"exact zero", 0, 0},
		{"exact five", 5, 5},
		{"exact twenty eight", 28, 28},
		{"rounds down to five", 6, 5},
		{"rounds up to twelve", 9, 12},
		{"tie between 12 and 18 rounds up", 15, 18},
		{"tie between 0 and 5 rounds up", 2.5, 5},
		{"above top slab clamps to 28", 40, 28},
		{"negative falls back to default", -1, DefaultSlab},
		{"nan falls back to default", math.NaN(), DefaultSlab},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NearestSlab(tc.raw))
		})
	}
}

func TestSplitRateInvariant(t *testing.T) {
	const epsilon = 1e-9

	for _, slab := range Slabs {
		for _, intrastate := range []bool{true, false} {
			split := SplitRate(slab, intrastate)

			if intrastate {
				assert.Zero(t, split.IGST, "intrastate slab %v", slab)
				assert.InDelta(t, slab/2, split.CGST, epsilon)
				assert.InDelta(t, slab/2, split.SGST, epsilon)
			} else {
				assert.Zero(t, split.CGST, "interstate slab %v", slab)
				assert.Zero(t, split.SGST, "interstate slab %v", slab)
				assert.InDelta(t, slab, split.IGST, epsilon)
			}

			total := split.CGST + split.SGST + split.IGST
			assert.InDelta(t, slab, total, epsilon, "split must sum back to slab %v", slab)
		}
	}
}

func TestSplitRateToggleKeepsSlab(t *testing.T) {
	// A line that resolved to 18% and then toggles supply type must keep
	// the slab; only the decomposition changes.
	slab := NearestSlab(17.2)
	assert.Equal(t, float64(18), slab)

	inter := SplitRate(slab, false)
	intra := SplitRate(slab, true)

	assert.Equal(t, float64(18), inter.IGST)
	assert.Equal(t, float64(9), intra.CGST)
	assert.Equal(t, float64(9), intra.SGST)

	// Round trip ends exactly where it started.
	assert.Equal(t, inter, SplitRate(slab, false))
}

func TestSupplyTypeFor(t *testing.T) {
	assert.Equal(t, SupplyIntrastate, SupplyTypeFor("27", "27"))
	assert.Equal(t, SupplyIntrastate, SupplyTypeFor("27", ""))
	assert.Equal(t, SupplyInterstate, SupplyTypeFor("27", "29"))
}
