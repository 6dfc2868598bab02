package exchange

import (
	"context"
	"strconv"
	"strings"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"

	"unitrade/internal/model"
	"unitrade/internal/symbol"
	"unitrade/internal/trade"
)

// ccxtToUnified 把 ccxt 统一符号（BTC/USDT、BTC/USD:BTC）还原为统一符号。
func ccxtToUnified(ccxtSym string) string {
	if idx := strings.IndexByte(ccxtSym, ':'); idx >= 0 {
		ccxtSym = ccxtSym[:idx]
	}
	return strings.ReplaceAll(ccxtSym, "/", "-")
}

// orderAmount 计算提交给交易所的数量。反向合约以张数下单，
// 其余市场直接使用格式化后的币数。
func (c *Client) orderAmount(ctx context.Context, params *model.FormattedOrderParams, info *model.SymbolInfo) (float64, error) {
	quantity, err := strconv.ParseFloat(params.QuantityText, 64)
	if err != nil {
		return 0, model.NewError(model.CodeParameter, "非法的数量文本 %q", params.QuantityText)
	}

	if info.TradeType != model.TradeTypeInverse {
		return quantity, nil
	}

	refPrice := params.Price
	if refPrice <= 0 {
		refPrice, err = c.GetPrice(ctx, params.Symbol, params.TradeType)
		if err != nil {
			return 0, err
		}
	}

	contracts, err := symbol.CoinToContracts(info, quantity, refPrice)
	if err != nil {
		return 0, err
	}
	if contracts <= 0 {
		return 0, model.NewError(model.CodeQuantityRange,
			"%s 数量 %s 折算后不足一张合约", params.Symbol, params.QuantityText)
	}
	return contracts, nil
}

func ccxtOrderType(orderType model.OrderType) (string, bool) {
	switch orderType {
	case model.OrderTypeMarket:
		return "market", false
	case model.OrderTypeLimit:
		return "limit", false
	case model.OrderTypePostOnly:
		return "limit", true
	default:
		return string(orderType), false
	}
}

func (c *Client) createOrderOptions(params *model.FormattedOrderParams, postOnly bool) []ccxt.CreateOrderOptions {
	extra := map[string]interface{}{}
	if params.ClientOrderID != "" {
		extra["clientOrderId"] = params.ClientOrderID
	}
	if params.ReduceOnly {
		extra["reduceOnly"] = true
	}
	if params.TradeType.IsContract() && params.PositionSide != "" {
		extra["positionSide"] = strings.ToUpper(string(params.PositionSide))
	}
	if postOnly {
		extra["postOnly"] = true
	}

	opts := make([]ccxt.CreateOrderOptions, 0, 2)
	if params.Type != model.OrderTypeMarket && params.Price > 0 {
		opts = append(opts, ccxt.WithCreateOrderPrice(params.Price))
	}
	if len(extra) > 0 {
		opts = append(opts, ccxt.WithCreateOrderParams(extra))
	}
	return opts
}

// DoPlaceOrder 提交单笔订单，参数已完成校验与精度处理。
func (c *Client) DoPlaceOrder(ctx context.Context, params *model.FormattedOrderParams, info *model.SymbolInfo) (*model.Order, error) {
	api, err := c.apiFor(params.TradeType)
	if err != nil {
		return nil, err
	}
	ccxtSym, err := c.unifiedToCcxt(params.Symbol, params.TradeType)
	if err != nil {
		return nil, err
	}

	amount, err := c.orderAmount(ctx, params, info)
	if err != nil {
		return nil, err
	}

	orderType, postOnly := ccxtOrderType(params.Type)
	opts := c.createOrderOptions(params, postOnly)

	var raw ccxt.Order
	err = c.callWithRetry(ctx, "create_order", func() error {
		result, err := api.CreateOrder(ccxtSym, orderType, string(params.Side), amount, opts...)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	order := convertOrder(params.Symbol, params.TradeType, raw)
	if order.ClientOrderID == "" {
		order.ClientOrderID = params.ClientOrderID
	}
	if order.Quantity == 0 {
		order.Quantity = params.Quantity
	}
	return order, nil
}

// DoBatchPlaceOrder 提交一个批次。ccxt 的 Go 客户端没有统一的批量下单端点，
// 这里在批次内逐笔提交并隔离逐笔失败，上层的分片与结果汇总语义不变。
func (c *Client) DoBatchPlaceOrder(ctx context.Context, items []*model.FormattedOrderParams, infos []*model.SymbolInfo) ([]model.OrderResult, error) {
	results := make([]model.OrderResult, len(items))
	for i, item := range items {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		order, err := c.DoPlaceOrder(ctx, item, infos[i])
		if err != nil {
			results[i] = model.OrderResult{Index: i, Err: model.AsError(err)}
			continue
		}
		results[i] = model.OrderResult{Index: i, Order: order}
	}
	return results, nil
}

// CancelOrder 撤销订单。
func (c *Client) CancelOrder(ctx context.Context, sym string, tradeType model.TradeType, orderID string) error {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return err
	}

	return c.callWithRetry(ctx, "cancel_order", func() error {
		_, err := api.CancelOrder(orderID, ccxt.WithCancelOrderSymbol(ccxtSym))
		return err
	})
}

// GetOrder 查询订单。
func (c *Client) GetOrder(ctx context.Context, sym string, tradeType model.TradeType, orderID string) (*model.Order, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return nil, err
	}

	var raw ccxt.Order
	err = c.callWithRetry(ctx, "fetch_order", func() error {
		result, err := api.FetchOrder(orderID, ccxt.WithFetchOrderSymbol(ccxtSym))
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return convertOrder(sym, tradeType, raw), nil
}

// GetOpenOrders 查询未结订单，sym 为空表示全部交易对。
func (c *Client) GetOpenOrders(ctx context.Context, sym string, tradeType model.TradeType) ([]*model.Order, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}

	opts := make([]ccxt.FetchOpenOrdersOptions, 0, 1)
	if sym != "" {
		ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ccxt.WithFetchOpenOrdersSymbol(ccxtSym))
	}

	var raw []ccxt.Order
	err = c.callWithRetry(ctx, "fetch_open_orders", func() error {
		result, err := api.FetchOpenOrders(opts...)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*model.Order, 0, len(raw))
	for _, o := range raw {
		unified := ccxtToUnified(derefString(o.Symbol))
		if unified == "" {
			unified = sym
		}
		orders = append(orders, convertOrder(unified, tradeType, o))
	}
	return orders, nil
}

// GetBalances 获取账户余额。
func (c *Client) GetBalances(ctx context.Context, tradeType model.TradeType) ([]model.Balance, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}

	var raw ccxt.Balances
	err = c.callWithRetry(ctx, "fetch_balance", func() error {
		result, err := api.FetchBalance()
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return convertBalances(raw), nil
}

// GetPositions 获取持仓，sym 为空表示全部交易对。
func (c *Client) GetPositions(ctx context.Context, sym string, tradeType model.TradeType) ([]model.Position, error) {
	if !tradeType.IsContract() {
		return nil, model.NewError(model.CodeUnsupported, "%s 市场没有持仓概念", tradeType)
	}
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}

	opts := make([]ccxt.FetchPositionsOptions, 0, 1)
	if sym != "" {
		ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ccxt.WithFetchPositionsSymbols([]string{ccxtSym}))
	}

	var raw []ccxt.Position
	err = c.callWithRetry(ctx, "fetch_positions", func() error {
		result, err := api.FetchPositions(opts...)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	positions := make([]model.Position, 0, len(raw))
	for _, p := range raw {
		if derefFloat(p.Contracts) == 0 {
			continue
		}
		unified := ccxtToUnified(derefString(p.Symbol))
		multiplier := 1.0
		if info, err := c.GetSymbolInfo(ctx, unified, tradeType); err == nil {
			multiplier = info.ContractMultiplier
		}
		positions = append(positions, convertPosition(unified, tradeType, multiplier, p))
	}
	return positions, nil
}

// SetLeverage 设置杠杆倍数。
func (c *Client) SetLeverage(ctx context.Context, sym string, tradeType model.TradeType, leverage int) error {
	if !tradeType.IsContract() {
		return model.NewError(model.CodeUnsupported, "现货市场不支持设置杠杆")
	}
	api, err := c.apiFor(tradeType)
	if err != nil {
		return err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return err
	}

	return c.callWithRetry(ctx, "set_leverage", func() error {
		_, err := api.SetLeverage(int64(leverage), ccxt.WithSetLeverageSymbol(ccxtSym))
		return err
	})
}

// PlaceStrategyOrder 提交策略委托，算法参数已由上层按统一语义填充。
func (c *Client) PlaceStrategyOrder(ctx context.Context, req *trade.StrategyRequest) (*model.StrategyOrder, error) {
	params := req.Params
	api, err := c.apiFor(params.TradeType)
	if err != nil {
		return nil, err
	}
	ccxtSym, err := c.unifiedToCcxt(params.Symbol, params.TradeType)
	if err != nil {
		return nil, err
	}

	quantity, err := strconv.ParseFloat(req.QuantityText, 64)
	if err != nil {
		return nil, model.NewError(model.CodeParameter, "非法的数量文本 %q", req.QuantityText)
	}

	orderType := "market"
	opts := make([]ccxt.CreateOrderOptions, 0, 2)
	if params.OrderPrice > 0 {
		orderType = "limit"
		opts = append(opts, ccxt.WithCreateOrderPrice(params.OrderPrice))
	}

	extra := make(map[string]interface{}, len(req.AlgoParams)+1)
	for k, v := range req.AlgoParams {
		extra[k] = v
	}
	if params.ClientOrderID != "" {
		extra["clientOrderId"] = params.ClientOrderID
	}
	if len(extra) > 0 {
		opts = append(opts, ccxt.WithCreateOrderParams(extra))
	}

	var raw ccxt.Order
	err = c.callWithRetry(ctx, "create_strategy_order", func() error {
		result, err := api.CreateOrder(ccxtSym, orderType, string(params.Side), quantity, opts...)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	order := &model.StrategyOrder{
		StrategyOrderID: derefString(raw.Id),
		ClientOrderID:   derefString(raw.ClientOrderId),
		Symbol:          params.Symbol,
		TradeType:       params.TradeType,
		Side:            params.Side,
		Kind:            params.Kind,
		Status:          model.StrategyOrderStatusLive,
		TriggerPrice:    params.TriggerPrice,
		OrderPrice:      params.OrderPrice,
		Quantity:        quantity,
		CreatedAt:       time.Now().UTC(),
	}
	if order.ClientOrderID == "" {
		order.ClientOrderID = params.ClientOrderID
	}
	return order, nil
}

// CancelStrategyOrder 撤销策略委托。
func (c *Client) CancelStrategyOrder(ctx context.Context, sym string, tradeType model.TradeType, strategyOrderID string) error {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return err
	}
	ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
	if err != nil {
		return err
	}

	return c.callWithRetry(ctx, "cancel_strategy_order", func() error {
		_, err := api.CancelOrder(strategyOrderID,
			ccxt.WithCancelOrderSymbol(ccxtSym),
			ccxt.WithCancelOrderParams(map[string]interface{}{"trigger": true}),
		)
		return err
	})
}

// GetOpenStrategyOrders 查询未触发的策略委托。
func (c *Client) GetOpenStrategyOrders(ctx context.Context, sym string, tradeType model.TradeType) ([]*model.StrategyOrder, error) {
	api, err := c.apiFor(tradeType)
	if err != nil {
		return nil, err
	}

	opts := []ccxt.FetchOpenOrdersOptions{
		ccxt.WithFetchOpenOrdersParams(map[string]interface{}{"trigger": true}),
	}
	if sym != "" {
		ccxtSym, err := c.unifiedToCcxt(sym, tradeType)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ccxt.WithFetchOpenOrdersSymbol(ccxtSym))
	}

	var raw []ccxt.Order
	err = c.callWithRetry(ctx, "fetch_open_strategy_orders", func() error {
		result, err := api.FetchOpenOrders(opts...)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*model.StrategyOrder, 0, len(raw))
	for _, o := range raw {
		unified := ccxtToUnified(derefString(o.Symbol))
		if unified == "" {
			unified = sym
		}
		order := &model.StrategyOrder{
			StrategyOrderID: derefString(o.Id),
			ClientOrderID:   derefString(o.ClientOrderId),
			Symbol:          unified,
			TradeType:       tradeType,
			Side:            model.OrderSide(strings.ToLower(derefString(o.Side))),
			Kind:            model.StrategyKindTrigger,
			Status:          model.StrategyOrderStatusLive,
			TriggerPrice:    derefFloat(o.TriggerPrice),
			OrderPrice:      derefFloat(o.Price),
			Quantity:        derefFloat(o.Amount),
		}
		if ts := derefInt64(o.Timestamp); ts > 0 {
			order.CreatedAt = time.UnixMilli(ts)
		}
		orders = append(orders, order)
	}
	return orders, nil
}
