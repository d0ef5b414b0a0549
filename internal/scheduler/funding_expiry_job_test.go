package scheduler

import (
	"testing"
	"time"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/bountydotnew/bounty.new-sub002/internal/database"
	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createBountyWithAge(t *testing.T, db *gorm.DB, paymentStatus model.PaymentStatus, age time.Duration) *model.BountyModel {
	t.Helper()

	bounty := &model.BountyModel{
		Title:         "超时清理测试",
		Amount:        decimal.RequireFromString("100.00"),
		PaymentStatus: string(paymentStatus),
		CreatorId:     1,
	}
	require.NoError(t, db.Create(bounty).Error)
	require.NoError(t, db.Model(bounty).UpdateColumn("updated_at", time.Now().Add(-age)).Error)
	return bounty
}

func TestFundingExpiryJob(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{Interval: 300, PendingExpiryHours: 24},
	}
	job := NewFundingExpiryJob(db, cfg)

	stale := createBountyWithAge(t, db, model.PaymentStatusPending, 48*time.Hour)
	fresh := createBountyWithAge(t, db, model.PaymentStatusPending, time.Hour)
	held := createBountyWithAge(t, db, model.PaymentStatusHeld, 48*time.Hour)

	job.Execute()

	var reloadedStale model.BountyModel
	require.NoError(t, db.First(&reloadedStale, stale.Id).Error)
	require.Equal(t, string(model.PaymentStatusFailed), reloadedStale.PaymentStatus)

	var reloadedFresh model.BountyModel
	require.NoError(t, db.First(&reloadedFresh, fresh.Id).Error)
	require.Equal(t, string(model.PaymentStatusPending), reloadedFresh.PaymentStatus)

	// 已托管的资金不受清理影响
	var reloadedHeld model.BountyModel
	require.NoError(t, db.First(&reloadedHeld, held.Id).Error)
	require.Equal(t, string(model.PaymentStatusHeld), reloadedHeld.PaymentStatus)
}

func TestFundingExpiryJobSchedule(t *testing.T) {
	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{Interval: 300, PendingExpiryHours: 24},
	}
	job := NewFundingExpiryJob(nil, cfg)

	require.Equal(t, "funding_expiry_sweeper", job.GetName())
	require.NotNil(t, job.GetSchedule())
}
