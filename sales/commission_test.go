package sales_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/sales"
)

func dec(i int64) decimal.Decimal     { return decimal.NewFromInt(i) }
func decPtr(i int64) *decimal.Decimal { d := decimal.NewFromInt(i); return &d }

func threeTierSchedule() []sales.CommissionLevel {
	return []sales.CommissionLevel{
		{Level: 1, MinAmount: dec(0), MaxAmount: decPtr(19999), AdditionalCommission: dec(0)},
		{Level: 2, MinAmount: dec(20000), MaxAmount: decPtr(49999), AdditionalCommission: dec(1)},
		{Level: 3, MinAmount: dec(50000), MaxAmount: nil, AdditionalCommission: dec(2)},
	}
}

// =============================================================================
// TIER RESOLUTION
// =============================================================================

func TestResolveTier_MidScheduleVolume(t *testing.T) {
	// GIVEN: Tiers [0-19999, 20000-49999, 50000-inf] and volume 25000
	// THEN: Level 2 is active, 25000 more reaches level 3

	status := sales.ResolveTier(threeTierSchedule(), dec(25000))

	require.NotNil(t, status.Current)
	assert.Equal(t, 2, status.Current.Level)
	require.NotNil(t, status.AmountToNext)
	assert.Equal(t, "25000", status.AmountToNext.String())
}

func TestResolveTier_TopTierHasNoNext(t *testing.T) {
	status := sales.ResolveTier(threeTierSchedule(), dec(75000))

	require.NotNil(t, status.Current)
	assert.Equal(t, 3, status.Current.Level)
	assert.Nil(t, status.AmountToNext)
}

func TestResolveTier_BoundariesInclusive(t *testing.T) {
	levels := threeTierSchedule()

	atMin := sales.ResolveTier(levels, dec(20000))
	require.NotNil(t, atMin.Current)
	assert.Equal(t, 2, atMin.Current.Level)

	atMax := sales.ResolveTier(levels, dec(49999))
	require.NotNil(t, atMax.Current)
	assert.Equal(t, 2, atMax.Current.Level)
	assert.Equal(t, "1", atMax.AmountToNext.String())
}

func TestResolveTier_VolumeOutsideScheduleRange(t *testing.T) {
	// Volume below the lowest minAmount yields no current level.
	levels := []sales.CommissionLevel{
		{Level: 1, MinAmount: dec(10000), MaxAmount: decPtr(49999), AdditionalCommission: dec(1)},
		{Level: 2, MinAmount: dec(50000), MaxAmount: decPtr(99999), AdditionalCommission: dec(2)},
	}

	below := sales.ResolveTier(levels, dec(500))
	assert.Nil(t, below.Current)
	assert.Nil(t, below.AmountToNext)

	above := sales.ResolveTier(levels, dec(250000))
	assert.Nil(t, above.Current)
}

func TestResolveTier_EmptySchedule(t *testing.T) {
	status := sales.ResolveTier(nil, dec(25000))
	assert.Nil(t, status.Current)
	assert.Nil(t, status.AmountToNext)
}

func TestResolveTier_OverlappingScheduleFirstMatchWins(t *testing.T) {
	// Malformed (overlapping) schedules are not repaired: the first match
	// in sorted order wins.
	levels := []sales.CommissionLevel{
		{Level: 1, MinAmount: dec(0), MaxAmount: decPtr(30000), AdditionalCommission: dec(0)},
		{Level: 2, MinAmount: dec(20000), MaxAmount: decPtr(49999), AdditionalCommission: dec(1)},
	}

	status := sales.ResolveTier(levels, dec(25000))
	require.NotNil(t, status.Current)
	assert.Equal(t, 1, status.Current.Level)
}

// =============================================================================
// SCHEDULE MAINTENANCE
// =============================================================================

func TestNormalizeLevels_SortsAndRenumbers(t *testing.T) {
	// GIVEN: A schedule whose first tier's bounds were edited above the second
	// WHEN: Normalizing
	// THEN: Levels are re-sorted by minAmount and renumbered 1..N

	edited := []sales.CommissionLevel{
		{Level: 1, MinAmount: dec(50000), MaxAmount: nil, AdditionalCommission: dec(2)},
		{Level: 2, MinAmount: dec(0), MaxAmount: decPtr(19999), AdditionalCommission: dec(0)},
		{Level: 3, MinAmount: dec(20000), MaxAmount: decPtr(49999), AdditionalCommission: dec(1)},
	}

	normalized := sales.NormalizeLevels(edited)

	require.Len(t, normalized, 3)
	for i, l := range normalized {
		assert.Equal(t, i+1, l.Level, "levels must be dense 1..N")
	}
	assert.Equal(t, "0", normalized[0].MinAmount.String())
	assert.Equal(t, "20000", normalized[1].MinAmount.String())
	assert.Equal(t, "50000", normalized[2].MinAmount.String())

	// Input is untouched.
	assert.Equal(t, 1, edited[0].Level)
	assert.Equal(t, "50000", edited[0].MinAmount.String())
}

func TestNormalizeLevels_EditRoundTripPreservesCoverage(t *testing.T) {
	// Editing a middle tier's bounds then normalizing keeps the tier count
	// and the schedule's overall volume coverage.

	levels := threeTierSchedule()
	before := sales.NormalizeLevels(levels)

	levels[1].MinAmount = dec(25000)
	levels[0].MaxAmount = decPtr(24999)
	after := sales.NormalizeLevels(levels)

	require.Len(t, after, len(before))
	assert.Equal(t, "0", after[0].MinAmount.String(), "lowest bound unchanged")
	assert.Nil(t, after[len(after)-1].MaxAmount, "top stays unbounded")
}

func TestValidateLevels(t *testing.T) {
	assert.NoError(t, sales.ValidateLevels(threeTierSchedule()))

	negative := []sales.CommissionLevel{{MinAmount: dec(-1)}}
	err := sales.ValidateLevels(negative)
	assert.ErrorIs(t, err, sales.ErrValidation)

	inverted := []sales.CommissionLevel{{MinAmount: dec(100), MaxAmount: decPtr(50)}}
	assert.ErrorIs(t, sales.ValidateLevels(inverted), sales.ErrValidation)
}

func TestDefaultLevels_ValidAndNormalized(t *testing.T) {
	levels := sales.DefaultLevels()

	require.NoError(t, sales.ValidateLevels(levels))
	assert.Equal(t, levels, sales.NormalizeLevels(levels))
}
