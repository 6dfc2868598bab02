package model

import "time"

// OrderStatus 表示订单状态。
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusPartial  OrderStatus = "partial"
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusRejected OrderStatus = "rejected"
	OrderStatusExpired  OrderStatus = "expired"
)

// PlaceOrderParams 为统一下单参数。
type PlaceOrderParams struct {
	Symbol    string
	TradeType TradeType
	Side      OrderSide
	Type      OrderType
	Quantity  float64
	// Price 限价单必填，市价单可空。
	Price float64
	// PositionSide 合约市场必填。
	PositionSide  PositionSide
	Leverage      int
	ClientOrderID string
	ReduceOnly    bool
}

// FormattedOrderParams 为经过精度处理后的下单参数，
// Quantity/Price 以交易所可接受的字符串形式给出。
type FormattedOrderParams struct {
	PlaceOrderParams
	QuantityText string
	PriceText    string
}

// Order 为订单快照，由提交或查询调用返回，本层不跟踪其后续生命周期。
type Order struct {
	OrderID       string
	ClientOrderID string
	Symbol        string
	TradeType     TradeType
	Side          OrderSide
	Type          OrderType
	Status        OrderStatus
	Price         float64
	AvgPrice      float64
	Quantity      float64
	FilledQty     float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderResult 为批量下单中单个条目的结果，Err 为 nil 表示成功。
type OrderResult struct {
	Index int
	Order *Order
	Err   *Error
}

// OK 判断条目是否成功。
func (r OrderResult) OK() bool {
	return r.Err == nil
}

// BatchPlaceOrderResult 为批量下单汇总结果，
// Results 与输入顺序一致且长度恒等于输入长度。
type BatchPlaceOrderResult struct {
	SuccessCount int
	FailedCount  int
	Results      []OrderResult
}

// BatchOrderLimits 描述交易所批量下单能力。
type BatchOrderLimits struct {
	MaxBatchSize        int
	SupportedTradeTypes []TradeType
}

// Supports 判断给定市场类型是否支持批量下单。
func (l BatchOrderLimits) Supports(t TradeType) bool {
	for _, st := range l.SupportedTradeTypes {
		if st == t {
			return true
		}
	}
	return false
}
