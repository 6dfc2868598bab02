package store

import (
	"context"
	"testing"
	"time"

	"unitrade/internal/config"
	"unitrade/internal/model"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	s, err := NewSQLite(config.DatabaseConfig{
		InMemory:     true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("初始化内存库失败: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	j, err := NewJournal(s)
	if err != nil {
		t.Fatalf("初始化流水表失败: %v", err)
	}
	return j
}

func TestJournalRecordOrder(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	order := &model.Order{
		OrderID:       "10001",
		ClientOrderID: "utl-abc",
		Symbol:        "BTC-USDT",
		TradeType:     model.TradeTypeLinear,
		Side:          model.OrderSideBuy,
		Type:          model.OrderTypeLimit,
		Status:        model.OrderStatusOpen,
		Price:         50000,
		Quantity:      0.001,
		CreatedAt:     time.Now(),
	}
	if err := j.RecordOrder(ctx, "binance", order); err != nil {
		t.Fatalf("写入订单流水失败: %v", err)
	}

	var count int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM order_journal WHERE order_id = ?`, "10001").Scan(&count); err != nil {
		t.Fatalf("查询流水失败: %v", err)
	}
	if count != 1 {
		t.Fatalf("期望 1 条流水, 实际 %d", count)
	}

	if err := j.RecordOrder(ctx, "binance", nil); err != nil {
		t.Fatalf("空订单应当被忽略: %v", err)
	}
}

func TestJournalRecordStrategyOrder(t *testing.T) {
	j := newTestJournal(t)

	order := &model.StrategyOrder{
		StrategyOrderID: "algo-1",
		Symbol:          "ETH-USDT",
		TradeType:       model.TradeTypeLinear,
		Side:            model.OrderSideSell,
		Kind:            model.StrategyKindStopLoss,
		Status:          model.StrategyOrderStatusLive,
		TriggerPrice:    2500,
		Quantity:        1.5,
	}
	if err := j.RecordStrategyOrder(context.Background(), "okx", order); err != nil {
		t.Fatalf("写入策略委托流水失败: %v", err)
	}

	var kind string
	if err := j.db.QueryRow(`SELECT kind FROM strategy_order_journal WHERE strategy_order_id = ?`, "algo-1").Scan(&kind); err != nil {
		t.Fatalf("查询流水失败: %v", err)
	}
	if kind != string(model.StrategyKindStopLoss) {
		t.Fatalf("期望 kind=%s, 实际 %s", model.StrategyKindStopLoss, kind)
	}
}
