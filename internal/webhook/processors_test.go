package webhook

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/bountydotnew/bounty.new-sub002/internal/database"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
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

func createBounty(t *testing.T, db *gorm.DB, paymentStatus model.PaymentStatus) *model.BountyModel {
	t.Helper()

	bounty := &model.BountyModel{
		Title:         "实现暗色主题",
		Amount:        decimal.RequireFromString("100.00"),
		Currency:      "usd",
		Status:        string(model.BountyStatusDraft),
		PaymentStatus: string(paymentStatus),
		CreatorId:     3,
		CreatorName:   "bob",
	}
	require.NoError(t, db.Create(bounty).Error)
	return bounty
}

// effectsRecorder 记录副作用调用的测试桩
type effectsRecorder struct {
	mu       sync.Mutex
	funded   []int64
	refunded []int64
}

func (r *effectsRecorder) BountyFunded(b *model.BountyModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funded = append(r.funded, b.Id)
}

func (r *effectsRecorder) BountyRefunded(o *logic.RefundOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunded = append(r.refunded, o.Bounty.Id)
}

func rawEvent(t *testing.T, eventType string, object interface{}) *stripe.Event {
	t.Helper()

	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_test",
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestCheckoutProcessorPaidSession(t *testing.T) {
	db := setupTestDB(t)
	fundingLogic := logic.NewFundingLogic(db)
	effects := &effectsRecorder{}
	p := NewCheckoutProcessor(fundingLogic, effects)
	bounty := createBounty(t, db, model.PaymentStatusPending)

	event := rawEvent(t, "checkout.session.completed", map[string]interface{}{
		"id":             "cs_1",
		"payment_status": "paid",
		"payment_intent": "pi_1",
		"amount_total":   10000,
		"metadata":       map[string]string{"bounty_id": fmt.Sprint(bounty.Id)},
	})

	result, err := p.Process(event)
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.Equal(t, []int64{bounty.Id}, effects.funded)

	var reloaded model.BountyModel
	require.NoError(t, db.First(&reloaded, bounty.Id).Error)
	require.Equal(t, string(model.PaymentStatusHeld), reloaded.PaymentStatus)
	require.Equal(t, "pi_1", reloaded.ProviderPaymentRef)
	require.Equal(t, "cs_1", reloaded.ProviderCheckoutRef)
}

func TestCheckoutProcessorUnpaidSession(t *testing.T) {
	db := setupTestDB(t)
	fundingLogic := logic.NewFundingLogic(db)
	effects := &effectsRecorder{}
	p := NewCheckoutProcessor(fundingLogic, effects)
	bounty := createBounty(t, db, model.PaymentStatusPending)

	// 异步支付方式：session 完成但扣款未成功，等支付事件
	event := rawEvent(t, "checkout.session.completed", map[string]interface{}{
		"id":             "cs_1",
		"payment_status": "unpaid",
		"payment_intent": "pi_1",
		"metadata":       map[string]string{"bounty_id": fmt.Sprint(bounty.Id)},
	})

	result, err := p.Process(event)
	require.NoError(t, err)
	require.False(t, result.Applied)
	require.Empty(t, effects.funded)

	var reloaded model.BountyModel
	require.NoError(t, db.First(&reloaded, bounty.Id).Error)
	require.Equal(t, string(model.PaymentStatusPending), reloaded.PaymentStatus)
}

func TestPaymentIntentProcessorRace(t *testing.T) {
	// checkout-completed 先处理完，payment-succeeded 后到：被吸收且不再触发副作用
	db := setupTestDB(t)
	fundingLogic := logic.NewFundingLogic(db)
	effects := &effectsRecorder{}
	checkout := NewCheckoutProcessor(fundingLogic, effects)
	payment := NewPaymentIntentProcessor(fundingLogic, effects)
	bounty := createBounty(t, db, model.PaymentStatusPending)

	checkoutEvent := rawEvent(t, "checkout.session.completed", map[string]interface{}{
		"id":             "cs_1",
		"payment_status": "paid",
		"payment_intent": "pi_1",
		"amount_total":   10000,
		"metadata":       map[string]string{"bounty_id": fmt.Sprint(bounty.Id)},
	})
	paymentEvent := rawEvent(t, "payment_intent.succeeded", map[string]interface{}{
		"id":       "pi_1",
		"amount":   10000,
		"metadata": map[string]string{"bounty_id": fmt.Sprint(bounty.Id)},
	})

	result, err := checkout.Process(checkoutEvent)
	require.NoError(t, err)
	require.True(t, result.Applied)

	result, err = payment.Process(paymentEvent)
	require.NoError(t, err)
	require.False(t, result.Applied)
	require.Equal(t, "already processed", result.NoOp)

	require.Equal(t, []int64{bounty.Id}, effects.funded)

	var count int64
	require.NoError(t, db.Model(&model.LedgerEntryModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestPaymentIntentProcessorFailed(t *testing.T) {
	db := setupTestDB(t)
	fundingLogic := logic.NewFundingLogic(db)
	effects := &effectsRecorder{}
	p := NewPaymentIntentProcessor(fundingLogic, effects)
	bounty := createBounty(t, db, model.PaymentStatusPending)

	event := rawEvent(t, "payment_intent.payment_failed", map[string]interface{}{
		"id":       "pi_1",
		"amount":   10000,
		"metadata": map[string]string{"bounty_id": fmt.Sprint(bounty.Id)},
	})

	result, err := p.Process(event)
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.Empty(t, effects.funded)

	var reloaded model.BountyModel
	require.NoError(t, db.First(&reloaded, bounty.Id).Error)
	require.Equal(t, string(model.PaymentStatusFailed), reloaded.PaymentStatus)
}

func TestPaymentIntentProcessorMissingBountyRef(t *testing.T) {
	db := setupTestDB(t)
	p := NewPaymentIntentProcessor(logic.NewFundingLogic(db), &effectsRecorder{})

	event := rawEvent(t, "payment_intent.succeeded", map[string]interface{}{
		"id":     "pi_1",
		"amount": 10000,
	})

	result, err := p.Process(event)
	require.NoError(t, err)
	require.False(t, result.Applied)
	require.NotEmpty(t, result.NoOp)
}

func TestRefundProcessorChargeShape(t *testing.T) {
	db := setupTestDB(t)
	fundingLogic := logic.NewFundingLogic(db)
	effects := &effectsRecorder{}
	p := NewRefundProcessor(fundingLogic, effects)
	bounty := createBounty(t, db, model.PaymentStatusHeld)
	require.NoError(t, db.Model(bounty).Update("provider_payment_ref", "pi_1").Error)

	event := rawEvent(t, "charge.refunded", map[string]interface{}{
		"id":              "ch_1",
		"payment_intent":  "pi_1",
		"amount_refunded": 9500,
		"refunds": map[string]interface{}{
			"data": []map[string]interface{}{{"id": "re_1"}},
		},
	})

	result, err := p.Process(event)
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.Equal(t, []int64{bounty.Id}, effects.refunded)

	var entry model.LedgerEntryModel
	require.NoError(t, db.Where("bounty_id = ?", bounty.Id).First(&entry).Error)
	require.Equal(t, "re_1", entry.OperationRef)
	require.True(t, decimal.RequireFromString("95.00").Equal(entry.Amount))
}

func TestRefundProcessorBothShapesOneRefund(t *testing.T) {
	db := setupTestDB(t)
	fundingLogic := logic.NewFundingLogic(db)
	effects := &effectsRecorder{}
	p := NewRefundProcessor(fundingLogic, effects)
	bounty := createBounty(t, db, model.PaymentStatusHeld)
	require.NoError(t, db.Model(bounty).Update("provider_payment_ref", "pi_1").Error)

	chargeEvent := rawEvent(t, "charge.refunded", map[string]interface{}{
		"id":              "ch_1",
		"payment_intent":  "pi_1",
		"amount_refunded": 9500,
		"refunds": map[string]interface{}{
			"data": []map[string]interface{}{{"id": "re_1"}},
		},
	})
	refundEvent := rawEvent(t, "refund.updated", map[string]interface{}{
		"id":             "re_1",
		"payment_intent": "pi_1",
		"amount":         9500,
		"status":         "succeeded",
	})

	result, err := p.Process(chargeEvent)
	require.NoError(t, err)
	require.True(t, result.Applied)

	// 同一笔逻辑退款的另一种事件形态
	result, err = p.Process(refundEvent)
	require.NoError(t, err)
	require.False(t, result.Applied)

	require.Equal(t, []int64{bounty.Id}, effects.refunded)

	var count int64
	require.NoError(t, db.Model(&model.LedgerEntryModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRefundProcessorPendingRefundIgnored(t *testing.T) {
	db := setupTestDB(t)
	p := NewRefundProcessor(logic.NewFundingLogic(db), &effectsRecorder{})

	event := rawEvent(t, "refund.updated", map[string]interface{}{
		"id":             "re_1",
		"payment_intent": "pi_1",
		"amount":         9500,
		"status":         "pending",
	})

	result, err := p.Process(event)
	require.NoError(t, err)
	require.False(t, result.Applied)
}

func TestTransferProcessor(t *testing.T) {
	db := setupTestDB(t)
	p := NewTransferProcessor(logic.NewFundingLogic(db))
	bounty := createBounty(t, db, model.PaymentStatusHeld)

	event := rawEvent(t, "transfer.created", map[string]interface{}{
		"id":       "tr_1",
		"amount":   10000,
		"metadata": map[string]string{"bounty_id": fmt.Sprint(bounty.Id)},
	})

	result, err := p.Process(event)
	require.NoError(t, err)
	require.True(t, result.Applied)

	var reloaded model.BountyModel
	require.NoError(t, db.First(&reloaded, bounty.Id).Error)
	require.Equal(t, string(model.PaymentStatusReleased), reloaded.PaymentStatus)

	// transfer.updated 重放被吸收
	result, err = p.Process(rawEvent(t, "transfer.updated", map[string]interface{}{
		"id":       "tr_1",
		"amount":   10000,
		"metadata": map[string]string{"bounty_id": fmt.Sprint(bounty.Id)},
	}))
	require.NoError(t, err)
	require.False(t, result.Applied)
}
