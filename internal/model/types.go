package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType 表示市场类型。
type TradeType string

const (
	// TradeTypeSpot 现货市场。
	TradeTypeSpot TradeType = "spot"
	// TradeTypeLinear U本位永续合约。
	TradeTypeLinear TradeType = "linear"
	// TradeTypeInverse 币本位交割合约。
	TradeTypeInverse TradeType = "inverse"
)

// IsContract 判断是否为合约市场。
func (t TradeType) IsContract() bool {
	return t == TradeTypeLinear || t == TradeTypeInverse
}

// OrderSide 表示下单方向。
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType 表示订单类型。
type OrderType string

const (
	OrderTypeLimit    OrderType = "limit"
	OrderTypeMarket   OrderType = "market"
	OrderTypePostOnly OrderType = "post_only"
)

// PositionSide 表示持仓方向。
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// SymbolInfo 描述一个交易对的完整元信息，统一符号格式为 BASE-QUOTE。
type SymbolInfo struct {
	Symbol    string
	RawSymbol string
	Base      string
	Quote     string
	TradeType TradeType

	// TickSize / StepSize 保留交易所原始字符串，小数位数从文本推导。
	TickSize string
	StepSize string

	MinQty float64
	// MaxQty 为 0 表示不限制。
	MaxQty float64

	PricePrecision int
	QtyPrecision   int

	Tradable bool

	// ContractMultiplier 反向合约面值（每张合约的计价货币金额），其余市场为 0。
	ContractMultiplier float64
	MaxLeverage        int
}

// Balance 描述单一资产余额，金额使用字符串避免浮点精度损失。
type Balance struct {
	Asset  string
	Free   string
	Locked string
	Total  string
}

// FreeDecimal 返回可用余额的精确数值，解析失败返回 0。
func (b Balance) FreeDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(b.Free)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Position 描述单个方向的持仓。
type Position struct {
	Symbol           string
	TradeType        TradeType
	Side             PositionSide
	Amount           float64
	EntryPrice       float64
	MarkPrice        float64
	UnrealizedPnL    float64
	Leverage         float64
	MarginMode       string
	LiquidationPrice float64
	Timestamp        time.Time
}

// Ticker 为行情快照。
type Ticker struct {
	Symbol    string
	Last      float64
	Bid       float64
	Ask       float64
	High      float64
	Low       float64
	Volume    float64
	Timestamp time.Time
}

// OrderBookLevel 表示盘口档位。
type OrderBookLevel struct {
	Price  float64
	Amount float64
}

// OrderBook 为订单簿快照。
type OrderBook struct {
	Symbol    string
	Bids      []OrderBookLevel
	Asks      []OrderBookLevel
	Timestamp time.Time
}

// Candle 代表单根K线。
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
