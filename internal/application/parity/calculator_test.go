package parity

import (
	"testing"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func founderPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func marchScenario() ([]domain.FounderShare, []LedgerEntry, uuid.UUID, uuid.UUID) {
	a, b := uuid.New(), uuid.New()
	founders := []domain.FounderShare{
		{FounderID: a, Name: "A", EquityPercent: dec("60")},
		{FounderID: b, Name: "B", EquityPercent: dec("40")},
	}
	entries := []LedgerEntry{
		{FounderID: founderPtr(a), Amount: dec("300"), Date: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{FounderID: founderPtr(b), Amount: dec("100"), Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)},
		{FounderID: nil, Amount: dec("50"), Date: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
	}
	return founders, entries, a, b
}

func TestCompute_MarchScenario(t *testing.T) {
	founders, entries, a, b := marchScenario()
	res := Compute(Period{Month: 3, Year: 2024}, founders, entries)

	assert.True(t, res.TotalSpent.Equal(dec("450")), "totalSpent = %s", res.TotalSpent)
	assert.True(t, res.UnassignedSpent.Equal(dec("50")))
	require.Len(t, res.Founders, 2)

	fa, fb := res.Founders[0], res.Founders[1]
	assert.Equal(t, a, fa.FounderID)
	assert.True(t, fa.ExpectedContribution.Equal(dec("270")))
	assert.True(t, fa.ActualContribution.Equal(dec("300")))
	assert.True(t, fa.Disparity.Equal(dec("30")))
	assert.Equal(t, domain.StatusNeedsCollection, fa.Status)

	assert.Equal(t, b, fb.FounderID)
	assert.True(t, fb.ExpectedContribution.Equal(dec("180")))
	assert.True(t, fb.ActualContribution.Equal(dec("100")))
	assert.True(t, fb.Disparity.Equal(dec("-80")))
	assert.Equal(t, domain.StatusOwesMoney, fb.Status)
}

func TestCompute_ExpectedSumsToTotal(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	founders := []domain.FounderShare{
		{FounderID: a, EquityPercent: dec("33.33")},
		{FounderID: b, EquityPercent: dec("33.33")},
		{FounderID: c, EquityPercent: dec("33.34")},
	}
	entries := []LedgerEntry{
		{FounderID: founderPtr(a), Amount: dec("123.45"), Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{FounderID: founderPtr(c), Amount: dec("0.07"), Date: time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)},
		{Amount: dec("19.99"), Date: time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)},
	}
	res := Compute(Period{Month: 7, Year: 2024}, founders, entries)

	sum := decimal.Zero
	for _, f := range res.Founders {
		sum = sum.Add(f.ExpectedContribution)
		assert.True(t, f.Disparity.Equal(f.ActualContribution.Sub(f.ExpectedContribution)))
	}
	assert.True(t, sum.Equal(res.TotalSpent), "sum(expected)=%s total=%s", sum, res.TotalSpent)
}

func TestCompute_HalfOpenBoundary(t *testing.T) {
	a := uuid.New()
	founders := []domain.FounderShare{{FounderID: a, EquityPercent: dec("100")}}
	entries := []LedgerEntry{
		{FounderID: founderPtr(a), Amount: dec("10"), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{FounderID: founderPtr(a), Amount: dec("99"), Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{FounderID: founderPtr(a), Amount: dec("7"), Date: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)},
	}

	march := Compute(Period{Month: 3, Year: 2024}, founders, entries)
	assert.True(t, march.TotalSpent.Equal(dec("10")))

	april := Compute(Period{Month: 4, Year: 2024}, founders, entries)
	assert.True(t, april.TotalSpent.Equal(dec("99")))
}

func TestCompute_Idempotent(t *testing.T) {
	founders, entries, _, _ := marchScenario()
	p := Period{Month: 3, Year: 2024}
	first := Compute(p, founders, entries)
	second := Compute(p, founders, entries)

	assert.True(t, first.TotalSpent.Equal(second.TotalSpent))
	for i := range first.Founders {
		assert.True(t, first.Founders[i].ExpectedContribution.Equal(second.Founders[i].ExpectedContribution))
		assert.True(t, first.Founders[i].Disparity.Equal(second.Founders[i].Disparity))
	}
}

func TestCompute_EmptyLedgerIsEven(t *testing.T) {
	founders, _, _, _ := marchScenario()
	res := Compute(Period{Month: 1, Year: 2025}, founders, nil)

	assert.True(t, res.TotalSpent.IsZero())
	for _, f := range res.Founders {
		assert.True(t, f.Disparity.IsZero())
		assert.Equal(t, domain.StatusEven, f.Status)
	}
}

func TestPeriod(t *testing.T) {
	start, end := Period{Month: 12, Year: 2023}.Bounds()
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), end)

	assert.Less(t, Period{Month: 12, Year: 2023}.Ordinal(), Period{Month: 1, Year: 2024}.Ordinal())
	assert.Equal(t, "2024-03", Period{Month: 3, Year: 2024}.String())

	assert.ErrorIs(t, Period{Month: 13, Year: 2024}.Validate(), domain.ErrInvalidArgument)
	assert.ErrorIs(t, Period{Month: 0, Year: 2024}.Validate(), domain.ErrInvalidArgument)
	assert.NoError(t, Period{Month: 1, Year: 2024}.Validate())

	loc := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, Period{Month: 2, Year: 2024}, PeriodOf(time.Date(2024, 3, 1, 2, 0, 0, 0, loc)))
}
