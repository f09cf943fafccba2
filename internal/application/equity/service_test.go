package equity

import (
	"context"
	"testing"

	"foundersbook-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEquityTest(t *testing.T) (*Service, []domain.User) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.EquitySplit{}, &domain.EquityShare{}))

	users := []domain.User{
		{Name: "Asha", Email: "asha@example.com"},
		{Name: "Bilal", Email: "bilal@example.com"},
		{Name: "Chen", Email: "chen@example.com"},
	}
	require.NoError(t, db.Create(&users).Error)
	return &Service{DB: db}, users
}

func share(id uuid.UUID, pct string) ShareInput {
	return ShareInput{UserID: id.String(), Equity: decimal.RequireFromString(pct)}
}

func TestValidate(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	_, err := Validate(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Validate([]ShareInput{share(a, "60"), share(b, "30")})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.EqualError(t, err, "Total equity must equal 100%")

	_, err = Validate([]ShareInput{share(a, "60"), share(a, "40")})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Validate([]ShareInput{share(a, "120"), share(b, "-20")})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Validate([]ShareInput{{UserID: "nope", Equity: decimal.NewFromInt(100)}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	c := uuid.New()
	_, err = Validate([]ShareInput{share(a, "33.333"), share(b, "33.333"), share(c, "33.334")})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.EqualError(t, err, "Equity supports at most two decimal places")

	ids, err := Validate([]ShareInput{share(a, "33.33"), share(b, "66.67")})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}

func TestRegistry_NotConfigured(t *testing.T) {
	svc, _ := setupEquityTest(t)
	_, err := svc.Registry(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, err := svc.View(context.Background())
	require.NoError(t, err)
	assert.False(t, view.Configured)
	require.Len(t, view.Founders, 3)
	for _, f := range view.Founders {
		assert.True(t, f.EquityPercent.IsZero())
	}
}

func TestSave_ReplacesWholesale(t *testing.T) {
	svc, users := setupEquityTest(t)
	ctx := context.Background()
	actor := users[0].ID

	got, err := svc.Save(ctx, actor, []ShareInput{share(users[0].ID, "60"), share(users[1].ID, "40")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Asha", got[0].Name)
	assert.True(t, got[0].EquityPercent.Equal(decimal.NewFromInt(60)))

	got, err = svc.Save(ctx, actor, []ShareInput{share(users[2].ID, "100")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Chen", got[0].Name)

	var splits int64
	require.NoError(t, svc.DB.Model(&domain.EquitySplit{}).Count(&splits).Error)
	assert.Equal(t, int64(1), splits)

	view, err := svc.View(ctx)
	require.NoError(t, err)
	assert.True(t, view.Configured)
	for _, f := range view.Founders {
		if f.FounderID == users[2].ID {
			assert.True(t, f.EquityPercent.Equal(decimal.NewFromInt(100)))
		} else {
			assert.True(t, f.EquityPercent.IsZero())
		}
	}
}

func TestSave_UnknownFounder(t *testing.T) {
	svc, users := setupEquityTest(t)
	_, err := svc.Save(context.Background(), users[0].ID, []ShareInput{share(users[0].ID, "50"), share(uuid.New(), "50")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Registry(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
