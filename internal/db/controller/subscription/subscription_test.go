package subscription

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

func TestEndDate(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	end, err := EndDate(models.PlanMonthly, start)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), end, "AddDate normalises Feb 31")

	end, err = EndDate(models.PlanAnnual, start)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), end)

	_, err = EndDate("weekly", start)
	require.ErrorIs(t, err, ErrInvalidPlan)
}

func TestSubscribeReplacesActive(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := Subscribe(db, 1, models.PlanMonthly, now)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := Subscribe(db, 1, models.PlanAnnual, now.Add(time.Hour))
	require.NoError(t, err)

	cur, err := Current(db, 1, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, second.ID, cur.ID)
	assert.Equal(t, models.PlanAnnual, cur.PlanType)

	var active int64

	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = ? AND is_active = ?", 1, true).Count(&active).Error)
	assert.Equal(t, int64(1), active)

	require.NoError(t, Cancel(db, 1))
	require.ErrorIs(t, Cancel(db, 1), ErrNotFound)

	_, err = Current(db, 1, now)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExpireDue(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := Subscribe(db, 1, models.PlanMonthly, now.AddDate(0, -2, 0))
	require.NoError(t, err)

	_, err = Subscribe(db, 2, models.PlanMonthly, now)
	require.NoError(t, err)

	n, err := ExpireDue(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = Current(db, 1, now)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Current(db, 2, now)
	require.NoError(t, err)
}
