package sales_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/sales"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func testSale(day int, amount float64, tours int, saleType sales.SaleType, cancelled bool) sales.Sale {
	return sales.Sale{
		ID:               sales.SaleID(time.Now().Format("20060102150405.000000000")),
		Date:             sales.NewTimePoint(2024, time.August, day),
		SaleAmount:       decimal.NewFromFloat(amount),
		CommissionAmount: decimal.NewFromFloat(amount * 0.05),
		NumberOfTours:    tours,
		SaleType:         saleType,
		IsCancelled:      cancelled,
	}
}

// =============================================================================
// AGGREGATION RULES
// =============================================================================

func TestAggregate_CancelledSalesExcludedFromSums(t *testing.T) {
	// GIVEN: One active sale of 100 and one cancelled sale of 50
	// THEN: totalVolume=100 and cancelledSales=1

	totals := sales.Aggregate([]sales.Sale{
		testSale(1, 100, 1, sales.SaleDeed, false),
		testSale(2, 50, 1, sales.SaleDeed, true),
	})

	assert.Equal(t, "100", totals.TotalVolume.String())
	assert.Equal(t, 1, totals.CancelledSales)
	assert.Equal(t, 1, totals.ActiveSales)
	assert.Equal(t, 1, totals.TotalTours, "cancelled tours must not count")
	assert.Equal(t, 1, totals.DeedSales, "cancelled sales must not count by type")
}

func TestAggregate_SumsAndCounts(t *testing.T) {
	s1 := testSale(3, 10000, 2, sales.SaleDeed, false)
	s1.FDIPoints = decimal.NewFromInt(100)
	s1.FDIGivenPoints = decimal.NewFromInt(40)
	s1.FDICost = decimal.NewFromFloat(12.50)

	s2 := testSale(10, 25000, 3, sales.SaleTrust, false)
	s2.FDIPoints = decimal.NewFromInt(50)

	s3 := testSale(20, 5000, 0, sales.SaleOther, false)

	totals := sales.Aggregate([]sales.Sale{s1, s2, s3})

	assert.Equal(t, 3, totals.ActiveSales)
	assert.Equal(t, 0, totals.CancelledSales)
	assert.Equal(t, 5, totals.TotalTours)
	assert.Equal(t, "40000", totals.TotalVolume.String())
	assert.Equal(t, "2000", totals.TotalCommission.String())
	assert.Equal(t, 1, totals.DeedSales)
	assert.Equal(t, 1, totals.TrustSales)
	assert.Equal(t, "150", totals.FDIPoints.String())
	assert.Equal(t, "40", totals.FDIGivenPoints.String())
	assert.Equal(t, "12.5", totals.FDICost.String())

	// VPG = 40000 / 5 tours
	assert.Equal(t, "8000", totals.VPG.String())
}

func TestAggregate_VPGWithZeroToursIsZero(t *testing.T) {
	// GIVEN: Active volume but no tours recorded
	// THEN: VPG is the zero sentinel, never a division error

	totals := sales.Aggregate([]sales.Sale{
		testSale(1, 100000, 0, sales.SaleDeed, false),
	})

	assert.True(t, totals.VPG.IsZero())
	assert.Equal(t, "100000", totals.TotalVolume.String())
}

func TestAggregate_EmptyInputIsAllZero(t *testing.T) {
	totals := sales.Aggregate(nil)

	assert.Zero(t, totals.ActiveSales)
	assert.Zero(t, totals.CancelledSales)
	assert.Zero(t, totals.TotalTours)
	assert.True(t, totals.TotalVolume.IsZero())
	assert.True(t, totals.TotalCommission.IsZero())
	assert.True(t, totals.VPG.IsZero())
	assert.True(t, totals.FDIPoints.IsZero())
}

func TestAggregate_OrderIndependent(t *testing.T) {
	// Shuffling the input must not change any Totals field.

	input := []sales.Sale{
		testSale(1, 1234.56, 1, sales.SaleDeed, false),
		testSale(5, 9999.99, 4, sales.SaleTrust, false),
		testSale(9, 0.01, 0, sales.SaleOther, false),
		testSale(12, 500, 2, sales.SaleDeed, true),
		testSale(20, 42000, 7, sales.SaleTrust, false),
	}
	want := sales.Aggregate(input)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]sales.Sale, len(input))
		copy(shuffled, input)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := sales.Aggregate(shuffled)
		assert.Equal(t, want, got, "aggregation depends on input order")
	}
}

// =============================================================================
// PERIOD FILTERING
// =============================================================================

func TestFilterByPeriod(t *testing.T) {
	august := sales.MonthlyPeriods(2024)[7]

	inAugust := testSale(15, 100, 1, sales.SaleDeed, false)
	onBoundary := testSale(31, 200, 1, sales.SaleDeed, false)
	outside := testSale(1, 300, 1, sales.SaleDeed, false)
	outside.Date = sales.NewTimePoint(2024, time.September, 1)

	filtered := sales.FilterByPeriod([]sales.Sale{inAugust, onBoundary, outside}, august)

	require.Len(t, filtered, 2)
	assert.Equal(t, "300", sales.Aggregate(filtered).TotalVolume.String())
}
