package symbol

import (
	"strings"

	"unitrade/internal/model"
)

// ExchangeBinance 为币安交易所标识。
const ExchangeBinance = "binance"

// binanceInversePerpSuffix 币安币本位永续合约后缀。
const binanceInversePerpSuffix = "_PERP"

// BinanceResolver 处理币安符号映射。
// 现货与U本位合约使用拼接符号（BTCUSDT），
// 币本位合约使用 BTCUSD_PERP / BTCUSD_240329 形式。
type BinanceResolver struct{}

// Exchange 返回交易所标识。
func (r *BinanceResolver) Exchange() string {
	return ExchangeBinance
}

// ToRaw 统一符号转原始符号。
func (r *BinanceResolver) ToRaw(symbol string, tradeType model.TradeType) (string, error) {
	base, quote, err := SplitUnified(symbol)
	if err != nil {
		return "", err
	}

	switch tradeType {
	case model.TradeTypeSpot, model.TradeTypeLinear:
		return base + quote, nil
	case model.TradeTypeInverse:
		// 交割符号需要结算日期，统一映射到永续；
		// 带日期的合约通过 ResolveQuarterContract 获取。
		return base + "USD" + binanceInversePerpSuffix, nil
	default:
		return "", model.NewError(model.CodeParameter, "未知市场类型: %q", tradeType)
	}
}

// FromRaw 原始符号还原为统一符号。
func (r *BinanceResolver) FromRaw(raw string, tradeType model.TradeType) (string, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return "", model.NewError(model.CodeParameter, "原始符号不能为空")
	}

	switch tradeType {
	case model.TradeTypeSpot, model.TradeTypeLinear:
		base, quote, err := splitConcatenated(raw)
		if err != nil {
			return "", err
		}
		return base + "-" + quote, nil
	case model.TradeTypeInverse:
		// BTCUSD_PERP / BTCUSD_240329 → BTC-USD
		if idx := strings.IndexByte(raw, '_'); idx >= 0 {
			raw = raw[:idx]
		}
		base, quote, err := splitConcatenated(raw)
		if err != nil {
			return "", err
		}
		return base + "-" + quote, nil
	default:
		return "", model.NewError(model.CodeParameter, "未知市场类型: %q", tradeType)
	}
}
