// Package exchange 提供基于 ccxt 的交易所接入，
// 同时实现行情能力（market.Source）与交易能力（trade.SubmissionCapability）。
// 重试、签名与限频由 ccxt 与本包的重试包装承担，上层管线不感知。
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"unitrade/internal/config"
	"unitrade/internal/model"
	"unitrade/internal/symbol"
)

// ccxtAPI 抽象本包用到的 ccxt 客户端方法，便于按市场类型切换底层实例并在测试中替换。
type ccxtAPI interface {
	LoadMarkets(params ...interface{}) (map[string]ccxt.MarketInterface, error)
	FetchTicker(symbol string, options ...ccxt.FetchTickerOptions) (ccxt.Ticker, error)
	FetchOrderBook(symbol string, options ...ccxt.FetchOrderBookOptions) (ccxt.OrderBook, error)
	FetchOHLCV(symbol string, options ...ccxt.FetchOHLCVOptions) ([]ccxt.OHLCV, error)
	CreateOrder(symbol string, typeVar string, side string, amount float64, options ...ccxt.CreateOrderOptions) (ccxt.Order, error)
	CancelOrder(id string, options ...ccxt.CancelOrderOptions) (ccxt.Order, error)
	FetchOrder(id string, options ...ccxt.FetchOrderOptions) (ccxt.Order, error)
	FetchOpenOrders(options ...ccxt.FetchOpenOrdersOptions) ([]ccxt.Order, error)
	FetchBalance(params ...interface{}) (ccxt.Balances, error)
	FetchPositions(options ...ccxt.FetchPositionsOptions) ([]ccxt.Position, error)
	SetLeverage(leverage int64, options ...ccxt.SetLeverageOptions) (map[string]interface{}, error)
}

// Client 为单个交易所的接入实例，按市场类型持有底层 ccxt 客户端。
type Client struct {
	name     string
	resolver symbol.Resolver
	logger   *zap.Logger
	retry    config.RetryConfig
	limits   model.BatchOrderLimits

	apis map[model.TradeType]ccxtAPI
	// ccxtSymbol 把统一符号映射到 ccxt 统一符号（BTC/USDT、BTC/USDT:USDT 等）。
	ccxtSymbol func(base, quote string, tradeType model.TradeType) string

	marketsMu sync.Mutex
	markets   map[model.TradeType]map[string]ccxt.MarketInterface
}

// Exchange 返回交易所标识。
func (c *Client) Exchange() string {
	return c.name
}

// Resolver 返回符号解析器。
func (c *Client) Resolver() symbol.Resolver {
	return c.resolver
}

// BatchLimits 返回批量下单能力。
func (c *Client) BatchLimits() model.BatchOrderLimits {
	return c.limits
}

func (c *Client) apiFor(tradeType model.TradeType) (ccxtAPI, error) {
	api, ok := c.apis[tradeType]
	if !ok || api == nil {
		return nil, model.NewError(model.CodeUnsupported,
			"交易所 %s 不支持 %s 市场", c.name, tradeType)
	}
	return api, nil
}

// ensureMarkets 加载并缓存指定市场类型的合约元数据，只加载一次。
func (c *Client) ensureMarkets(ctx context.Context, tradeType model.TradeType) (map[string]ccxt.MarketInterface, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}

	c.marketsMu.Lock()
	defer c.marketsMu.Unlock()

	if loaded, ok := c.markets[tradeType]; ok {
		return loaded, nil
	}

	var loaded map[string]ccxt.MarketInterface
	err = c.callWithRetry(ctx, "load_markets", func() error {
		result, err := api.LoadMarkets()
		if err != nil {
			return err
		}
		loaded = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.markets == nil {
		c.markets = make(map[model.TradeType]map[string]ccxt.MarketInterface)
	}
	c.markets[tradeType] = loaded
	c.logger.Info("市场元数据加载完成",
		zap.String("exchange", c.name),
		zap.String("trade_type", string(tradeType)),
		zap.Int("markets", len(loaded)),
	)
	return loaded, nil
}

// unifiedToCcxt 把统一符号转换为 ccxt 统一符号。
func (c *Client) unifiedToCcxt(sym string, tradeType model.TradeType) (string, error) {
	base, quote, err := symbol.SplitUnified(sym)
	if err != nil {
		return "", err
	}
	return c.ccxtSymbol(base, quote, tradeType), nil
}

// callWithRetry 对交易所调用做指数退避重试，只重试传输类错误。
func (c *Client) callWithRetry(ctx context.Context, operation string, fn func() error) error {
	attempt := 0
	delay := c.retry.MinDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxDelay := c.retry.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	maxAttempts := c.retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		attempt++
		start := time.Now()
		err := fn()
		duration := time.Since(start)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("交易所调用重试后成功",
					zap.String("operation", operation),
					zap.Int("attempts", attempt),
					zap.Duration("latency", duration),
				)
			}
			return nil
		}

		normalizedErr, retry := c.classifyError(err)

		if !retry || attempt >= maxAttempts {
			c.logger.Error("交易所调用失败",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Duration("latency", duration),
				zap.Error(normalizedErr),
			)
			return normalizedErr
		}

		wait := delay
		if wait > maxDelay {
			wait = maxDelay
		}

		c.logger.Warn("交易所调用失败，等待重试",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(normalizedErr),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// classifyError 把底层错误规整为带错误码的业务错误，并判断是否可重试。
// 传输类错误包装为 TRANSPORT_ERROR，交易所业务拒绝保留原始错误码与报文。
func (c *Client) classifyError(err error) (error, bool) {
	if err == nil {
		return nil, false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err, false
	}

	var coded *model.Error
	if errors.As(err, &coded) {
		return coded, false
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return model.WrapError(model.CodeTransport, err, "交易所 %s 传输失败", c.name), true
		case ccxt.OnMaintenanceErrType:
			message := strings.TrimSpace(ccxtErr.Message)
			if message == "" {
				message = "exchange under maintenance"
			}
			return model.WrapError(model.CodeTransport, err, "交易所维护中: %s", message), false
		case ccxt.BadSymbolErrType:
			return &model.Error{
				Code:         model.CodeSymbolUnavailable,
				Message:      fmt.Sprintf("交易所 %s 不识别该交易对", c.name),
				ExchangeCode: string(ccxtErr.Type),
				Raw:          ccxtErr.Message,
				Err:          err,
			}, false
		default:
			// 其余均视为交易所业务拒绝，原始错误码与报文透传。
			return &model.Error{
				Code:         model.CodeExchangeRejected,
				Message:      fmt.Sprintf("交易所 %s 拒绝请求", c.name),
				ExchangeCode: string(ccxtErr.Type),
				Raw:          ccxtErr.Message,
				Err:          err,
			}, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.WrapError(model.CodeTransport, err, "网络错误"), true
	}

	return model.WrapError(model.CodeTransport, err, "未分类的底层错误"), false
}
