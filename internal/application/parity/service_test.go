package parity

import (
	"context"
	"testing"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEquity struct {
	founders []domain.FounderShare
	err      error
}

func (f *fakeEquity) Registry(ctx context.Context) ([]domain.FounderShare, error) {
	return f.founders, f.err
}

func setupParityTest(t *testing.T, policy SettledPolicy) (*Service, *gorm.DB, uuid.UUID, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Expense{}, &domain.MonthlyParity{}))

	a, b := uuid.New(), uuid.New()
	svc := &Service{
		DB: db,
		Equity: &fakeEquity{founders: []domain.FounderShare{
			{FounderID: a, Name: "A", EquityPercent: dec("60")},
			{FounderID: b, Name: "B", EquityPercent: dec("40")},
		}},
		Policy: policy,
		Now:    func() time.Time { return time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC) },
	}
	return svc, db, a, b
}

func addExpense(t *testing.T, db *gorm.DB, founder *uuid.UUID, amount string, date time.Time) {
	require.NoError(t, db.Create(&domain.Expense{
		Name:              "item",
		Amount:            dec(amount),
		Date:              date,
		Category:          "Ops",
		AssignedFounderID: founder,
		CreatedBy:         uuid.New(),
	}).Error)
}

func seedMarch(t *testing.T, db *gorm.DB, a, b uuid.UUID) {
	addExpense(t, db, &a, "300", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	addExpense(t, db, &b, "100", time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC))
	addExpense(t, db, nil, "50", time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC))
	addExpense(t, db, &a, "999", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
}

func TestComputeParity_PersistsSnapshot(t *testing.T) {
	svc, db, a, b := setupParityTest(t, PolicyAmend)
	seedMarch(t, db, a, b)
	ctx := context.Background()

	mp, err := svc.ComputeParity(ctx, Period{Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.True(t, mp.TotalSpent.Equal(dec("450")))
	assert.True(t, mp.UnassignedSpent.Equal(dec("50")))
	require.Len(t, mp.PerFounder, 2)
	assert.Equal(t, a, mp.PerFounder[0].FounderID)
	assert.True(t, mp.PerFounder[0].Disparity.Equal(dec("30")))
	assert.True(t, mp.PerFounder[1].Disparity.Equal(dec("-80")))
	assert.Equal(t, domain.StatusOwesMoney, mp.PerFounder[1].Status)

	again, err := svc.ComputeParity(ctx, Period{Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, mp.ID, again.ID)
	assert.True(t, again.TotalSpent.Equal(mp.TotalSpent))

	var count int64
	require.NoError(t, db.Model(&domain.MonthlyParity{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestComputeParity_NoRegistry(t *testing.T) {
	svc, _, _, _ := setupParityTest(t, PolicyAmend)
	svc.Equity = &fakeEquity{err: domain.NotFound("Equity split not found")}

	_, err := svc.ComputeParity(context.Background(), Period{Month: 3, Year: 2024})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettle_OneWay(t *testing.T) {
	svc, db, a, b := setupParityTest(t, PolicyAmend)
	seedMarch(t, db, a, b)
	ctx := context.Background()
	p := Period{Month: 3, Year: 2024}

	_, err := svc.Settle(ctx, p)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ComputeParity(ctx, p)
	require.NoError(t, err)

	settled, err := svc.Settle(ctx, p)
	require.NoError(t, err)
	assert.True(t, settled.Settled)
	require.NotNil(t, settled.SettledAt)

	_, err = svc.Settle(ctx, p)
	assert.ErrorIs(t, err, domain.ErrFailedPrecondition)

	// A settled snapshot is returned as stored even after the ledger changes.
	addExpense(t, db, &b, "500", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	mp, err := svc.ComputeParity(ctx, p)
	require.NoError(t, err)
	assert.True(t, mp.TotalSpent.Equal(dec("450")))
	assert.True(t, mp.Settled)
}

func TestRecompute_LeavesSettledSnapshotAlone(t *testing.T) {
	svc, db, a, b := setupParityTest(t, PolicyAmend)
	seedMarch(t, db, a, b)
	ctx := context.Background()
	p := Period{Month: 3, Year: 2024}

	_, err := svc.ComputeParity(ctx, p)
	require.NoError(t, err)
	_, err = svc.Settle(ctx, p)
	require.NoError(t, err)

	// a plain recompute racing with Settle must not overwrite the settled totals
	addExpense(t, db, &a, "200", time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC))
	mp, err := svc.recompute(ctx, p, false)
	require.NoError(t, err)
	assert.True(t, mp.Settled)
	assert.True(t, mp.TotalSpent.Equal(dec("450")))
	assert.False(t, mp.AmendedAfterSettlement)

	amended, err := svc.recompute(ctx, p, true)
	require.NoError(t, err)
	assert.True(t, amended.TotalSpent.Equal(dec("650")))
	assert.True(t, amended.AmendedAfterSettlement)
}

func TestRecordExpense_AmendPolicy(t *testing.T) {
	svc, db, a, b := setupParityTest(t, PolicyAmend)
	seedMarch(t, db, a, b)
	ctx := context.Background()
	p := Period{Month: 3, Year: 2024}

	_, err := svc.ComputeParity(ctx, p)
	require.NoError(t, err)
	_, err = svc.Settle(ctx, p)
	require.NoError(t, err)

	require.NoError(t, svc.EnsureWritable(ctx, p))
	addExpense(t, db, &b, "50", time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC))
	mp, err := svc.RecordExpense(ctx, p)
	require.NoError(t, err)
	assert.True(t, mp.Settled)
	assert.True(t, mp.AmendedAfterSettlement)
	require.NotNil(t, mp.AmendedAt)
	assert.True(t, mp.TotalSpent.Equal(dec("500")))
}

func TestEnsureWritable_BlockPolicy(t *testing.T) {
	svc, db, a, b := setupParityTest(t, PolicyBlock)
	seedMarch(t, db, a, b)
	ctx := context.Background()
	p := Period{Month: 3, Year: 2024}

	require.NoError(t, svc.EnsureWritable(ctx, p))
	_, err := svc.ComputeParity(ctx, p)
	require.NoError(t, err)
	_, err = svc.Settle(ctx, p)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.EnsureWritable(ctx, p), domain.ErrFailedPrecondition)
	assert.NoError(t, svc.EnsureWritable(ctx, Period{Month: 4, Year: 2024}))
}

func TestGetAllUpTo_CrossesYearBoundary(t *testing.T) {
	svc, db, _, _ := setupParityTest(t, PolicyAmend)
	ctx := context.Background()
	for _, p := range []Period{{11, 2023}, {3, 2024}, {1, 2024}, {12, 2023}, {4, 2024}, {5, 2023}} {
		require.NoError(t, db.Create(&domain.MonthlyParity{Year: p.Year, Month: p.Month, Founders: []byte("[]")}).Error)
	}

	rows, err := svc.GetAllUpTo(ctx, Period{Month: 3, Year: 2024})
	require.NoError(t, err)
	got := make([]Period, 0, len(rows))
	for _, r := range rows {
		got = append(got, Period{Month: r.Month, Year: r.Year})
	}
	assert.Equal(t, []Period{{5, 2023}, {11, 2023}, {12, 2023}, {1, 2024}, {3, 2024}}, got)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, 4, all[5].Month)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAmend, p)
	p, err = ParsePolicy("BLOCK")
	require.NoError(t, err)
	assert.Equal(t, PolicyBlock, p)
	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}
