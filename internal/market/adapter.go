package market

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"unitrade/internal/model"
	"unitrade/internal/symbol"
)

// Adapter 组合符号缓存、解析器与交易所行情源。
// 实例通过构造函数显式注入给各消费方，不依赖任何包级共享状态。
type Adapter struct {
	source   Source
	resolver symbol.Resolver
	cache    *symbol.Cache
	logger   *zap.Logger

	// 相同 key 的并发价格查询合并为一次上游调用。
	prices singleflight.Group
}

// NewAdapter 创建行情适配器。
func NewAdapter(source Source, resolver symbol.Resolver, cache *symbol.Cache, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = symbol.NewCache(0)
	}
	return &Adapter{
		source:   source,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}
}

// Exchange 返回交易所标识。
func (a *Adapter) Exchange() string {
	return a.source.Exchange()
}

// Resolver 返回符号解析器。
func (a *Adapter) Resolver() symbol.Resolver {
	return a.resolver
}

// SymbolInfo 读取交易对元信息，命中缓存则不访问上游。
func (a *Adapter) SymbolInfo(ctx context.Context, sym string, tradeType model.TradeType) (*model.SymbolInfo, error) {
	if info, ok := a.cache.Get(a.source.Exchange(), tradeType, sym); ok {
		return info, nil
	}

	info, err := a.source.GetSymbolInfo(ctx, sym, tradeType)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, model.NewError(model.CodeSymbolUnavailable, "交易对 %s(%s) 不存在", sym, tradeType)
	}

	a.cache.Put(a.source.Exchange(), tradeType, sym, info)
	a.logger.Debug("符号元信息已缓存",
		zap.String("exchange", a.source.Exchange()),
		zap.String("symbol", sym),
		zap.String("trade_type", string(tradeType)),
	)
	return info, nil
}

// Price 获取最新成交价，相同 key 的并发请求合并为一次上游调用。
func (a *Adapter) Price(ctx context.Context, sym string, tradeType model.TradeType) (float64, error) {
	key := fmt.Sprintf("%s|%s|%s", a.source.Exchange(), tradeType, sym)
	v, err, _ := a.prices.Do(key, func() (interface{}, error) {
		return a.source.GetPrice(ctx, sym, tradeType)
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// MarkPrice 获取标记价格。
func (a *Adapter) MarkPrice(ctx context.Context, sym string, tradeType model.TradeType) (float64, error) {
	return a.source.GetMarkPrice(ctx, sym, tradeType)
}

// Ticker 获取行情快照。
func (a *Adapter) Ticker(ctx context.Context, sym string, tradeType model.TradeType) (*model.Ticker, error) {
	return a.source.GetTicker(ctx, sym, tradeType)
}

// OrderBook 获取订单簿。
func (a *Adapter) OrderBook(ctx context.Context, sym string, tradeType model.TradeType, depth int) (*model.OrderBook, error) {
	return a.source.GetOrderBook(ctx, sym, tradeType, depth)
}

// Candles 获取K线。
func (a *Adapter) Candles(ctx context.Context, sym string, tradeType model.TradeType, timeframe string, limit int) ([]model.Candle, error) {
	return a.source.GetCandles(ctx, sym, tradeType, timeframe, limit)
}

// SymbolInfoAndPrice 并发拉取元信息与最新价并合并返回。
func (a *Adapter) SymbolInfoAndPrice(ctx context.Context, sym string, tradeType model.TradeType) (*model.SymbolInfo, float64, error) {
	var (
		info  *model.SymbolInfo
		price float64
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := a.SymbolInfo(groupCtx, sym, tradeType)
		if err != nil {
			return err
		}
		info = data
		return nil
	})

	group.Go(func() error {
		p, err := a.Price(groupCtx, sym, tradeType)
		if err != nil {
			return err
		}
		price = p
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, 0, err
	}
	return info, price, nil
}

// ResolveQuarterSymbol 基于实时合约列表解析指定基础货币的季度交割合约。
func (a *Adapter) ResolveQuarterSymbol(ctx context.Context, base string, which symbol.QuarterKind) (string, error) {
	infos, err := a.source.GetAllSymbols(ctx, model.TradeTypeInverse)
	if err != nil {
		return "", err
	}

	candidates := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Base == base {
			candidates = append(candidates, info.RawSymbol)
		}
	}

	return symbol.ResolveQuarterContract(base, candidates, which)
}
