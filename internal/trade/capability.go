// Package trade 实现统一下单管线：参数校验 → 资金校验 → 精度处理 → 提交，
// 以及批量下单协调与策略委托构造。
package trade

import (
	"context"

	"unitrade/internal/model"
)

// SubmissionCapability 定义每个交易所需要实现的交易能力。
// 实现方负责原始符号转换、签名与传输，本包不关心这些细节。
type SubmissionCapability interface {
	// Exchange 返回交易所标识。
	Exchange() string
	// BatchLimits 返回批量下单能力。
	BatchLimits() model.BatchOrderLimits

	// DoPlaceOrder 提交单笔订单，参数已完成校验与精度处理。
	DoPlaceOrder(ctx context.Context, params *model.FormattedOrderParams, info *model.SymbolInfo) (*model.Order, error)
	// DoBatchPlaceOrder 提交一个批次（不超过 MaxBatchSize），
	// 返回与入参等长且顺序一致的逐项结果。
	DoBatchPlaceOrder(ctx context.Context, items []*model.FormattedOrderParams, infos []*model.SymbolInfo) ([]model.OrderResult, error)

	CancelOrder(ctx context.Context, symbol string, tradeType model.TradeType, orderID string) error
	GetOrder(ctx context.Context, symbol string, tradeType model.TradeType, orderID string) (*model.Order, error)
	GetOpenOrders(ctx context.Context, symbol string, tradeType model.TradeType) ([]*model.Order, error)

	GetBalances(ctx context.Context, tradeType model.TradeType) ([]model.Balance, error)
	GetPositions(ctx context.Context, symbol string, tradeType model.TradeType) ([]model.Position, error)
	SetLeverage(ctx context.Context, symbol string, tradeType model.TradeType, leverage int) error

	PlaceStrategyOrder(ctx context.Context, req *StrategyRequest) (*model.StrategyOrder, error)
	CancelStrategyOrder(ctx context.Context, symbol string, tradeType model.TradeType, strategyOrderID string) error
	GetOpenStrategyOrders(ctx context.Context, symbol string, tradeType model.TradeType) ([]*model.StrategyOrder, error)
}

// Journal 记录已提交订单，仅用于事后排查，失败不影响下单结果。
type Journal interface {
	RecordOrder(ctx context.Context, exchange string, order *model.Order) error
	RecordStrategyOrder(ctx context.Context, exchange string, order *model.StrategyOrder) error
}

// StrategyRequest 为构造完成、可直接提交的策略委托请求。
type StrategyRequest struct {
	Params model.StrategyOrderParams
	Info   *model.SymbolInfo

	QuantityText        string
	TriggerPriceText    string
	OrderPriceText      string
	ActivationPriceText string

	// AlgoParams 为交易所算法单参数，由 StrategyOrderBuilder 按统一语义填充。
	AlgoParams map[string]interface{}
}
