package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/sales"
	"github.com/warp/commission-engine/sales/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestSession(t *testing.T) (*sales.Session, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	project := sales.Project{ID: "proj-1", Name: "Default"}
	require.NoError(t, mem.SaveProject(ctx, project))
	require.NoError(t, mem.SetCommissionLevels(ctx, project.ID, sales.DefaultLevels()))

	ref := sales.NewTimePoint(2024, time.August, 25)
	return sales.NewSession(mem, mem, mem, project.ID, ref), mem
}

func seedSale(t *testing.T, mem *store.Memory, day sales.TimePoint, amount float64, tours int, cancelled bool) {
	t.Helper()
	s := testSale(1, amount, tours, sales.SaleDeed, cancelled)
	s.ID = ""
	s.Date = day
	_, err := mem.Add(context.Background(), s)
	require.NoError(t, err)
}

// =============================================================================
// FAMILY AND PERIOD TRANSITIONS
// =============================================================================

func TestSession_DefaultsToReferenceMonth(t *testing.T) {
	sess, _ := newTestSession(t)

	assert.Equal(t, sales.FamilyMonthly, sess.Family())
	assert.Equal(t, "August 2024", sess.Selected().Title)
}

func TestSession_SelectFamilyDerivesDefaultSelection(t *testing.T) {
	sess, _ := newTestSession(t)

	require.NoError(t, sess.SelectFamily(sales.FamilyAnnual))
	assert.Equal(t, "2024", sess.Selected().Title)

	require.NoError(t, sess.SelectFamily(sales.FamilyRolling45))
	assert.True(t, sess.Selected().Start.Equal(sales.NewTimePoint(2024, time.August, 25)))
	assert.Equal(t, 45, sales.DaysBetween(sess.Selected().Start, sess.Selected().End))

	require.NoError(t, sess.SelectFamily(sales.FamilyMonthly))
	assert.Equal(t, "August 2024", sess.Selected().Title)

	assert.ErrorIs(t, sess.SelectFamily("weekly"), sales.ErrInvalidPeriod)
}

func TestSession_SelectPeriodMonthlyOnly(t *testing.T) {
	sess, _ := newTestSession(t)

	require.NoError(t, sess.SelectPeriod("March 2024"))
	assert.Equal(t, "March 2024", sess.Selected().Title)

	assert.ErrorIs(t, sess.SelectPeriod("March 2019"), sales.ErrInvalidPeriod)
	assert.Equal(t, "March 2024", sess.Selected().Title, "failed pick must not change selection")

	require.NoError(t, sess.SelectFamily(sales.FamilyAnnual))
	assert.ErrorIs(t, sess.SelectPeriod("March 2024"), sales.ErrInvalidPeriod)
}

func TestSession_SetRollingAnchorCascades(t *testing.T) {
	// GIVEN: A rolling-90 session with a sale just outside the window
	// WHEN: Moving the anchor so the sale falls inside
	// THEN: The re-aggregated report includes the sale

	sess, mem := newTestSession(t)
	ctx := context.Background()

	seedSale(t, mem, sales.NewTimePoint(2024, time.May, 10), 30000, 3, false)

	require.NoError(t, sess.SelectFamily(sales.FamilyRolling90))
	report, err := sess.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Totals.ActiveSales, "sale predates the window")

	sess.SetRollingAnchor(sales.NewTimePoint(2024, time.May, 1))
	report, err = sess.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Totals.ActiveSales)
	assert.Equal(t, "30000", report.Totals.TotalVolume.String())
}

// =============================================================================
// REPORT PIPELINE
// =============================================================================

func TestSession_ReportFiltersAggregatesAndResolvesTier(t *testing.T) {
	sess, mem := newTestSession(t)
	ctx := context.Background()

	// Two August sales (one cancelled), one July sale outside the selection.
	seedSale(t, mem, sales.NewTimePoint(2024, time.August, 5), 25000, 2, false)
	seedSale(t, mem, sales.NewTimePoint(2024, time.August, 12), 99999, 1, true)
	seedSale(t, mem, sales.NewTimePoint(2024, time.July, 30), 40000, 1, false)

	report, err := sess.Report(ctx)
	require.NoError(t, err)

	assert.Equal(t, "August 2024", report.Period.Title)
	assert.Equal(t, 1, report.Totals.ActiveSales)
	assert.Equal(t, 1, report.Totals.CancelledSales)
	assert.Equal(t, "25000", report.Totals.TotalVolume.String())

	// 25000 falls in the default schedule's second tier.
	require.NotNil(t, report.Tier.Current)
	assert.Equal(t, 2, report.Tier.Current.Level)
	require.NotNil(t, report.Tier.AmountToNext)
	assert.Equal(t, "25000", report.Tier.AmountToNext.String())
}

func TestSession_ReportEmptyStore(t *testing.T) {
	sess, _ := newTestSession(t)

	report, err := sess.Report(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Totals.ActiveSales)
	assert.True(t, report.Totals.TotalVolume.IsZero())
	// Zero volume sits in the first tier of the default schedule.
	require.NotNil(t, report.Tier.Current)
	assert.Equal(t, 1, report.Tier.Current.Level)
}

func TestSession_ReportUnknownProject(t *testing.T) {
	mem := store.NewMemory()
	sess := sales.NewSession(mem, mem, mem, "missing", sales.NewTimePoint(2024, time.August, 25))

	_, err := sess.Report(context.Background())
	assert.ErrorIs(t, err, sales.ErrProjectNotFound)
}

// =============================================================================
// SELECTION PERSISTENCE
// =============================================================================

func TestSession_RememberAndRestore(t *testing.T) {
	sess, mem := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, sess.SelectPeriod("March 2024"))
	require.NoError(t, sess.Remember(ctx))

	// A fresh session restores the remembered title.
	restored := sales.NewSession(mem, mem, mem, "proj-1", sales.NewTimePoint(2024, time.August, 25))
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, sales.FamilyMonthly, restored.Family())
	assert.Equal(t, "March 2024", restored.Selected().Title)
}

func TestSession_RestoreStaleTitleFallsBack(t *testing.T) {
	// The remembered label is a weak reference: against a new reference
	// year the old title no longer resolves and the default wins.

	sess, mem := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, sess.SelectPeriod("March 2024"))
	require.NoError(t, sess.Remember(ctx))

	nextYear := sales.NewSession(mem, mem, mem, "proj-1", sales.NewTimePoint(2025, time.January, 3))
	require.NoError(t, nextYear.Restore(ctx))
	assert.Equal(t, "January 2025", nextYear.Selected().Title)
}

func TestSession_RestoreWithNothingRemembered(t *testing.T) {
	sess, _ := newTestSession(t)

	require.NoError(t, sess.Restore(context.Background()))
	assert.Equal(t, "August 2024", sess.Selected().Title)
}
