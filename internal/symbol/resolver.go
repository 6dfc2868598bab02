// Package symbol 负责统一符号与交易所原始符号之间的双向映射，
// 以及反向合约的币数⇄张数换算与季度合约解析。
package symbol

import (
	"math"
	"strings"

	"unitrade/internal/model"
)

// Resolver 为单个交易所的符号解析器。
// 统一符号形如 BASE-QUOTE（如 BTC-USDT），原始符号因交易所而异。
type Resolver interface {
	// Exchange 返回交易所标识。
	Exchange() string
	// ToRaw 将统一符号转换为交易所原始符号。
	// 反向交割合约因结算日期无法从统一符号推出，统一映射到永续符号，
	// 带日期的符号需通过 ResolveQuarterContract 结合实时合约列表获得。
	ToRaw(symbol string, tradeType model.TradeType) (string, error)
	// FromRaw 将交易所原始符号还原为统一符号。
	FromRaw(raw string, tradeType model.TradeType) (string, error)
}

// NewResolver 按交易所名称创建解析器。
func NewResolver(exchange string) (Resolver, error) {
	switch strings.ToLower(exchange) {
	case ExchangeBinance:
		return &BinanceResolver{}, nil
	case ExchangeOKX:
		return &OKXResolver{}, nil
	default:
		return nil, model.NewError(model.CodeUnsupported, "不支持的交易所: %s", exchange)
	}
}

// SplitUnified 拆分统一符号为基础货币与计价货币。
func SplitUnified(symbol string) (base, quote string, err error) {
	parts := strings.Split(symbol, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", model.NewError(model.CodeParameter, "非法的统一符号: %q", symbol)
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), nil
}

// 已知计价货币列表，拆分拼接符号时按最长匹配优先。
var knownQuotes = []string{
	"USDT", "USDC", "FDUSD", "TUSD", "BUSD", "DAI",
	"BTC", "ETH", "BNB", "USD", "EUR", "TRY", "BRL", "JPY",
}

// splitConcatenated 按已知计价货币从拼接符号中拆出 BASE/QUOTE。
func splitConcatenated(raw string) (base, quote string, err error) {
	upper := strings.ToUpper(raw)
	best := ""
	for _, q := range knownQuotes {
		if strings.HasSuffix(upper, q) && len(upper) > len(q) && len(q) > len(best) {
			best = q
		}
	}
	if best == "" {
		return "", "", model.NewError(model.CodeSymbolUnavailable, "无法从原始符号 %q 识别计价货币", raw)
	}
	return upper[:len(upper)-len(best)], best, nil
}

// CoinToContracts 将币数折算为反向合约张数，向下取整避免超出余额。
func CoinToContracts(info *model.SymbolInfo, coinQty, price float64) (float64, error) {
	if info.TradeType != model.TradeTypeInverse {
		return 0, model.NewError(model.CodeUnsupported, "%s 不是反向合约，无需折算张数", info.Symbol)
	}
	if info.ContractMultiplier <= 0 {
		return 0, model.NewError(model.CodeSymbolUnavailable, "%s 缺少合约面值", info.Symbol)
	}
	if price <= 0 {
		return 0, model.NewError(model.CodeParameter, "价格必须为正: %v", price)
	}
	return math.Floor(coinQty * price / info.ContractMultiplier), nil
}

// ContractsToCoin 将张数折算回币数。结果是可得币数的上界而非下单输入，
// 因此使用精确除法，不再向下取整。
func ContractsToCoin(info *model.SymbolInfo, contracts, price float64) (float64, error) {
	if info.TradeType != model.TradeTypeInverse {
		return 0, model.NewError(model.CodeUnsupported, "%s 不是反向合约，无需折算币数", info.Symbol)
	}
	if info.ContractMultiplier <= 0 {
		return 0, model.NewError(model.CodeSymbolUnavailable, "%s 缺少合约面值", info.Symbol)
	}
	if price <= 0 {
		return 0, model.NewError(model.CodeParameter, "价格必须为正: %v", price)
	}
	return contracts * info.ContractMultiplier / price, nil
}
