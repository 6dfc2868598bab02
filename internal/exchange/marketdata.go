package exchange

import (
	"context"

	ccxt "github.com/ccxt/ccxt/go/v4"

	"unitrade/internal/model"
)

// GetSymbolInfo 获取单个交易对元信息。
func (c *Client) GetSymbolInfo(ctx context.Context, sym string, tradeType model.TradeType) (*model.SymbolInfo, error) {
	markets, err := c.ensureMarkets(ctx, tradeType)
	if err != nil {
		return nil, err
	}

	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return nil, err
	}

	m, ok := markets[ccxtSym]
	if !ok {
		return nil, model.NewError(model.CodeSymbolUnavailable,
			"交易所 %s 上不存在 %s（%s）", c.name, sym, tradeType)
	}

	info := marketToSymbolInfo(sym, tradeType, m)
	return &info, nil
}

// GetAllSymbols 获取指定市场类型下全部交易对元信息。
func (c *Client) GetAllSymbols(ctx context.Context, tradeType model.TradeType) ([]*model.SymbolInfo, error) {
	markets, err := c.ensureMarkets(ctx, tradeType)
	if err != nil {
		return nil, err
	}

	infos := make([]*model.SymbolInfo, 0, len(markets))
	for _, m := range markets {
		base := derefString(m.BaseCurrency)
		quote := derefString(m.QuoteCurrency)
		if base == "" || quote == "" {
			continue
		}
		info := marketToSymbolInfo(base+"-"+quote, tradeType, m)
		infos = append(infos, &info)
	}
	return infos, nil
}

// GetPrice 获取最新成交价。
func (c *Client) GetPrice(ctx context.Context, sym string, tradeType model.TradeType) (float64, error) {
	ticker, err := c.GetTicker(ctx, sym, tradeType)
	if err != nil {
		return 0, err
	}
	if ticker.Last <= 0 {
		return 0, model.NewError(model.CodeTransport, "交易所 %s 返回的 %s 最新价为空", c.name, sym)
	}
	return ticker.Last, nil
}

// GetMarkPrice 获取标记价格，交易所未提供时回落到最新成交价。
func (c *Client) GetMarkPrice(ctx context.Context, sym string, tradeType model.TradeType) (float64, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return 0, err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return 0, err
	}

	var raw ccxt.Ticker
	err = c.callWithRetry(ctx, "fetch_mark_price", func() error {
		result, err := api.FetchTicker(ccxtSym)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return 0, err
	}

	if mark := parseNumeric(raw.Info["markPrice"]); mark > 0 {
		return mark, nil
	}
	if last := derefFloat(raw.Last); last > 0 {
		return last, nil
	}
	return 0, model.NewError(model.CodeTransport, "交易所 %s 返回的 %s 标记价为空", c.name, sym)
}

// GetTicker 获取行情快照。
func (c *Client) GetTicker(ctx context.Context, sym string, tradeType model.TradeType) (*model.Ticker, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return nil, err
	}

	var raw ccxt.Ticker
	err = c.callWithRetry(ctx, "fetch_ticker", func() error {
		result, err := api.FetchTicker(ccxtSym)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return convertTicker(sym, raw), nil
}

// GetOrderBook 获取订单簿。
func (c *Client) GetOrderBook(ctx context.Context, sym string, tradeType model.TradeType, depth int) (*model.OrderBook, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return nil, err
	}

	if depth <= 0 {
		depth = 50
	}

	var raw ccxt.OrderBook
	err = c.callWithRetry(ctx, "fetch_order_book", func() error {
		result, err := api.FetchOrderBook(ccxtSym, ccxt.WithFetchOrderBookLimit(int64(depth)))
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return convertOrderBook(sym, raw), nil
}

// GetCandles 获取K线。
func (c *Client) GetCandles(ctx context.Context, sym string, tradeType model.TradeType, timeframe string, limit int) ([]model.Candle, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return nil, err
	}

	if timeframe == "" {
		timeframe = "1m"
	}
	if limit <= 0 {
		limit = 1
	}

	var raw []ccxt.OHLCV
	err = c.callWithRetry(ctx, "fetch_ohlcv_"+timeframe, func() error {
		result, err := api.FetchOHLCV(
			ccxtSym,
			ccxt.WithFetchOHLCVTimeframe(timeframe),
			ccxt.WithFetchOHLCVLimit(int64(limit)),
		)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return convertCandles(raw), nil
}
