package model

import "time"

// StrategyKind 表示策略委托类型。
type StrategyKind string

const (
	StrategyKindStopLoss     StrategyKind = "stop_loss"
	StrategyKindTakeProfit   StrategyKind = "take_profit"
	StrategyKindTrigger      StrategyKind = "trigger"
	StrategyKindTrailingStop StrategyKind = "trailing_stop"
	StrategyKindOCO          StrategyKind = "oco"
)

// TriggerPriceType 表示触发价格基准。
type TriggerPriceType string

const (
	TriggerPriceLast  TriggerPriceType = "last"
	TriggerPriceMark  TriggerPriceType = "mark"
	TriggerPriceIndex TriggerPriceType = "index"
)

// StrategyOrderParams 为统一策略委托参数。
type StrategyOrderParams struct {
	Symbol    string
	TradeType TradeType
	Side      OrderSide
	Kind      StrategyKind
	Quantity  float64

	TriggerPrice     float64
	TriggerPriceType TriggerPriceType
	// OrderPrice 触发后挂单价格，为 0 表示触发后市价成交。
	OrderPrice float64

	// 附属止盈/止损（OCO 或带保护的计划委托）。
	TakeProfitTriggerPrice float64
	TakeProfitOrderPrice   float64
	StopLossTriggerPrice   float64
	StopLossOrderPrice     float64

	// 跟踪委托：回调比例（如 0.01 表示 1%）或固定价差，二者择一。
	CallbackRatio  float64
	CallbackSpread float64
	// ActivationPrice 跟踪委托激活价，为 0 表示立即激活。
	ActivationPrice float64

	PositionSide  PositionSide
	ReduceOnly    bool
	ClientOrderID string
}

// StrategyOrderStatus 表示策略委托状态。
type StrategyOrderStatus string

const (
	StrategyOrderStatusLive      StrategyOrderStatus = "live"
	StrategyOrderStatusTriggered StrategyOrderStatus = "triggered"
	StrategyOrderStatusCanceled  StrategyOrderStatus = "canceled"
	StrategyOrderStatusFailed    StrategyOrderStatus = "failed"
)

// StrategyOrder 为策略委托快照。
type StrategyOrder struct {
	StrategyOrderID string
	ClientOrderID   string
	Symbol          string
	TradeType       TradeType
	Side            OrderSide
	Kind            StrategyKind
	Status          StrategyOrderStatus
	TriggerPrice    float64
	OrderPrice      float64
	Quantity        float64
	CreatedAt       time.Time
}
