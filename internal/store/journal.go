package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"unitrade/internal/model"
)

// Journal 把已提交的订单与策略委托写入流水表。
type Journal struct {
	db *sql.DB
}

// NewJournal 创建订单流水记录器并初始化表结构。
func NewJournal(s *Store) (*Journal, error) {
	j := &Journal{db: s.DB()}
	if err := j.initSchema(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS order_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exchange TEXT NOT NULL,
			order_id TEXT NOT NULL,
			client_order_id TEXT,
			symbol TEXT NOT NULL,
			trade_type TEXT NOT NULL,
			side TEXT NOT NULL,
			order_type TEXT NOT NULL,
			status TEXT NOT NULL,
			price REAL,
			quantity REAL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_order_journal_symbol ON order_journal(exchange, symbol);`,
		`CREATE TABLE IF NOT EXISTS strategy_order_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exchange TEXT NOT NULL,
			strategy_order_id TEXT NOT NULL,
			client_order_id TEXT,
			symbol TEXT NOT NULL,
			trade_type TEXT NOT NULL,
			side TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			trigger_price REAL,
			order_price REAL,
			quantity REAL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_strategy_journal_symbol ON strategy_order_journal(exchange, symbol);`,
	}

	for _, stmt := range schema {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: 初始化流水表失败: %w", err)
		}
	}
	return nil
}

// RecordOrder 写入一条订单流水。
func (j *Journal) RecordOrder(ctx context.Context, exchange string, order *model.Order) error {
	if order == nil {
		return nil
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO order_journal
			(exchange, order_id, client_order_id, symbol, trade_type, side, order_type, status, price, quantity, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exchange, order.OrderID, order.ClientOrderID, order.Symbol,
		string(order.TradeType), string(order.Side), string(order.Type), string(order.Status),
		order.Price, order.Quantity, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: 写入订单流水失败: %w", err)
	}
	return nil
}

// RecordStrategyOrder 写入一条策略委托流水。
func (j *Journal) RecordStrategyOrder(ctx context.Context, exchange string, order *model.StrategyOrder) error {
	if order == nil {
		return nil
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO strategy_order_journal
			(exchange, strategy_order_id, client_order_id, symbol, trade_type, side, kind, status, trigger_price, order_price, quantity, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exchange, order.StrategyOrderID, order.ClientOrderID, order.Symbol,
		string(order.TradeType), string(order.Side), string(order.Kind), string(order.Status),
		order.TriggerPrice, order.OrderPrice, order.Quantity, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: 写入策略委托流水失败: %w", err)
	}
	return nil
}
