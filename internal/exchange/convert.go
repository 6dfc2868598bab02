package exchange

import (
	"sort"
	"strconv"
	"strings"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"

	"unitrade/internal/model"
	"unitrade/internal/precision"
)

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefBool(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// parseNumeric 兼容交易所返回的字符串数字与浮点数字。
func parseNumeric(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// formatStep 把精度信息渲染为步长文本。ccxt 的 precision 字段
// 可能是小数位数（8）或步长本身（0.001），两种形式都要兼容。
// 1 视为整数步长，整张合约市场会报这个值。
func formatStep(precision float64) string {
	if precision <= 0 {
		return ""
	}
	if precision > 1 && precision == float64(int(precision)) {
		// 小数位数形式
		places := int(precision)
		if places > 18 {
			return ""
		}
		return "0." + strings.Repeat("0", places-1) + "1"
	}
	// 步长形式
	return strconv.FormatFloat(precision, 'f', -1, 64)
}

// marketToSymbolInfo 把 ccxt 市场元数据转换为统一的交易对信息。
func marketToSymbolInfo(unified string, tradeType model.TradeType, m ccxt.MarketInterface) model.SymbolInfo {
	info := model.SymbolInfo{
		Symbol:    unified,
		RawSymbol: derefString(m.Id),
		Base:      derefString(m.BaseCurrency),
		Quote:     derefString(m.QuoteCurrency),
		TradeType: tradeType,
		Tradable:  derefBool(m.Active, true),
	}

	priceStep := derefFloat(m.Precision.Price)
	qtyStep := derefFloat(m.Precision.Amount)
	info.TickSize = formatStep(priceStep)
	info.StepSize = formatStep(qtyStep)
	if info.TickSize == "" {
		info.TickSize = "0.00000001"
	}
	if info.StepSize == "" {
		info.StepSize = "0.00000001"
	}
	info.PricePrecision = precision.DecimalPlaces(info.TickSize)
	info.QtyPrecision = precision.DecimalPlaces(info.StepSize)

	info.MinQty = derefFloat(m.Limits.Amount.Min)
	info.MaxQty = derefFloat(m.Limits.Amount.Max)
	info.MaxLeverage = int(derefFloat(m.Limits.Leverage.Max))

	if tradeType.IsContract() {
		info.ContractMultiplier = derefFloat(m.ContractSize)
		if info.ContractMultiplier <= 0 {
			info.ContractMultiplier = 1
		}
	}

	return info
}

// convertOrder 把 ccxt 订单转换为统一订单。
func convertOrder(unified string, tradeType model.TradeType, o ccxt.Order) *model.Order {
	order := &model.Order{
		OrderID:       derefString(o.Id),
		ClientOrderID: derefString(o.ClientOrderId),
		Symbol:        unified,
		TradeType:     tradeType,
		Side:          model.OrderSide(strings.ToLower(derefString(o.Side))),
		Type:          model.OrderType(strings.ToLower(derefString(o.Type))),
		Price:         derefFloat(o.Price),
		Quantity:      derefFloat(o.Amount),
		FilledQty:     derefFloat(o.Filled),
		AvgPrice:      derefFloat(o.Average),
		Status:        convertOrderStatus(derefString(o.Status), derefFloat(o.Filled)),
	}
	if ts := derefInt64(o.Timestamp); ts > 0 {
		order.CreatedAt = time.UnixMilli(ts)
	}
	if ts := derefInt64(o.LastUpdateTimestamp); ts > 0 {
		order.UpdatedAt = time.UnixMilli(ts)
	}
	return order
}

func convertOrderStatus(status string, filled float64) model.OrderStatus {
	switch strings.ToLower(status) {
	case "open":
		if filled > 0 {
			return model.OrderStatusPartial
		}
		return model.OrderStatusOpen
	case "closed":
		return model.OrderStatusFilled
	case "canceled", "cancelled":
		return model.OrderStatusCanceled
	case "expired":
		return model.OrderStatusExpired
	case "rejected":
		return model.OrderStatusRejected
	default:
		return model.OrderStatusOpen
	}
}

// convertBalances 把 ccxt 账户快照转换为统一余额列表，跳过全零资产。
func convertBalances(b ccxt.Balances) []model.Balance {
	assets := make([]string, 0, len(b.Total))
	for asset := range b.Total {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	balances := make([]model.Balance, 0, len(assets))
	for _, asset := range assets {
		free := derefFloat(b.Free[asset])
		used := derefFloat(b.Used[asset])
		total := derefFloat(b.Total[asset])
		if free == 0 && used == 0 && total == 0 {
			continue
		}
		balances = append(balances, model.Balance{
			Asset:  asset,
			Free:   strconv.FormatFloat(free, 'f', -1, 64),
			Locked: strconv.FormatFloat(used, 'f', -1, 64),
			Total:  strconv.FormatFloat(total, 'f', -1, 64),
		})
	}
	return balances
}

// convertPosition 把 ccxt 持仓转换为统一持仓，币本位持仓从张数换算回币数。
func convertPosition(unified string, tradeType model.TradeType, contractMultiplier float64, p ccxt.Position) model.Position {
	amount := derefFloat(p.Contracts)
	if tradeType == model.TradeTypeInverse && contractMultiplier > 0 {
		markPrice := derefFloat(p.MarkPrice)
		if markPrice > 0 {
			amount = amount * contractMultiplier / markPrice
		}
	}

	side := model.PositionSideLong
	if strings.EqualFold(derefString(p.Side), "short") {
		side = model.PositionSideShort
	}

	position := model.Position{
		Symbol:           unified,
		TradeType:        tradeType,
		Side:             side,
		Amount:           amount,
		EntryPrice:       derefFloat(p.EntryPrice),
		MarkPrice:        derefFloat(p.MarkPrice),
		LiquidationPrice: derefFloat(p.LiquidationPrice),
		UnrealizedPnL:    derefFloat(p.UnrealizedPnl),
		Leverage:         derefFloat(p.Leverage),
		MarginMode:       derefString(p.MarginMode),
	}
	if ts := int64(derefFloat(p.Timestamp)); ts > 0 {
		position.Timestamp = time.UnixMilli(ts)
	} else {
		position.Timestamp = time.Now().UTC()
	}
	return position
}

// convertOrderBook 把 ccxt 深度转换为统一深度。
func convertOrderBook(unified string, ob ccxt.OrderBook) *model.OrderBook {
	book := &model.OrderBook{
		Symbol: unified,
		Bids:   make([]model.OrderBookLevel, 0, len(ob.Bids)),
		Asks:   make([]model.OrderBookLevel, 0, len(ob.Asks)),
	}
	for _, level := range ob.Bids {
		if len(level) < 2 {
			continue
		}
		book.Bids = append(book.Bids, model.OrderBookLevel{Price: level[0], Amount: level[1]})
	}
	for _, level := range ob.Asks {
		if len(level) < 2 {
			continue
		}
		book.Asks = append(book.Asks, model.OrderBookLevel{Price: level[0], Amount: level[1]})
	}
	if ob.Timestamp != nil {
		book.Timestamp = time.UnixMilli(*ob.Timestamp)
	}
	return book
}

// convertTicker 把 ccxt 行情快照转换为统一行情。
func convertTicker(unified string, t ccxt.Ticker) *model.Ticker {
	ticker := &model.Ticker{
		Symbol: unified,
		Last:   derefFloat(t.Last),
		Bid:    derefFloat(t.Bid),
		Ask:    derefFloat(t.Ask),
		High:   derefFloat(t.High),
		Low:    derefFloat(t.Low),
		Volume: derefFloat(t.BaseVolume),
	}
	if t.Timestamp != nil {
		ticker.Timestamp = time.UnixMilli(int64(*t.Timestamp))
	}
	return ticker
}

// convertCandles 把 ccxt K 线转换为统一 K 线。
func convertCandles(ohlcv []ccxt.OHLCV) []model.Candle {
	candles := make([]model.Candle, 0, len(ohlcv))
	for _, row := range ohlcv {
		candles = append(candles, model.Candle{
			Timestamp: time.UnixMilli(row.Timestamp).UTC(),
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		})
	}
	return candles
}
