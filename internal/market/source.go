// Package market 聚合符号缓存、符号解析与交易所行情能力，
// 对上层提供统一的行情访问入口。
package market

import (
	"context"

	"unitrade/internal/model"
)

// Source 定义每个交易所需要实现的行情能力，
// 一律以统一符号加市场类型寻址，由实现方完成原始符号转换。
type Source interface {
	// Exchange 返回交易所标识。
	Exchange() string
	// GetSymbolInfo 获取单个交易对元信息。
	GetSymbolInfo(ctx context.Context, symbol string, tradeType model.TradeType) (*model.SymbolInfo, error)
	// GetAllSymbols 获取指定市场类型下全部交易对元信息。
	GetAllSymbols(ctx context.Context, tradeType model.TradeType) ([]*model.SymbolInfo, error)
	// GetPrice 获取最新成交价。
	GetPrice(ctx context.Context, symbol string, tradeType model.TradeType) (float64, error)
	// GetMarkPrice 获取标记价格，现货市场返回最新价。
	GetMarkPrice(ctx context.Context, symbol string, tradeType model.TradeType) (float64, error)
	// GetTicker 获取行情快照。
	GetTicker(ctx context.Context, symbol string, tradeType model.TradeType) (*model.Ticker, error)
	// GetOrderBook 获取订单簿。
	GetOrderBook(ctx context.Context, symbol string, tradeType model.TradeType, depth int) (*model.OrderBook, error)
	// GetCandles 获取K线。
	GetCandles(ctx context.Context, symbol string, tradeType model.TradeType, timeframe string, limit int) ([]model.Candle, error)
}
