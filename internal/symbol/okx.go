package symbol

import (
	"strings"

	"unitrade/internal/model"
)

// ExchangeOKX 为 OKX 交易所标识。
const ExchangeOKX = "okx"

// okxSwapSuffix OKX 永续合约后缀。
const okxSwapSuffix = "-SWAP"

// OKXResolver 处理 OKX 符号映射。
// 现货为 BTC-USDT，永续为 BTC-USDT-SWAP / BTC-USD-SWAP，
// 交割为 BTC-USD-240329。
type OKXResolver struct{}

// Exchange 返回交易所标识。
func (r *OKXResolver) Exchange() string {
	return ExchangeOKX
}

// ToRaw 统一符号转原始符号。
func (r *OKXResolver) ToRaw(symbol string, tradeType model.TradeType) (string, error) {
	base, quote, err := SplitUnified(symbol)
	if err != nil {
		return "", err
	}

	switch tradeType {
	case model.TradeTypeSpot:
		return base + "-" + quote, nil
	case model.TradeTypeLinear:
		return base + "-" + quote + okxSwapSuffix, nil
	case model.TradeTypeInverse:
		return base + "-USD" + okxSwapSuffix, nil
	default:
		return "", model.NewError(model.CodeParameter, "未知市场类型: %q", tradeType)
	}
}

// FromRaw 原始符号还原为统一符号。
func (r *OKXResolver) FromRaw(raw string, tradeType model.TradeType) (string, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return "", model.NewError(model.CodeParameter, "原始符号不能为空")
	}

	parts := strings.Split(raw, "-")
	switch tradeType {
	case model.TradeTypeSpot:
		if len(parts) != 2 {
			return "", model.NewError(model.CodeSymbolUnavailable, "非法的现货符号: %q", raw)
		}
		return parts[0] + "-" + parts[1], nil
	case model.TradeTypeLinear, model.TradeTypeInverse:
		// BTC-USDT-SWAP / BTC-USD-240329 → 去掉第三段。
		if len(parts) < 2 {
			return "", model.NewError(model.CodeSymbolUnavailable, "非法的合约符号: %q", raw)
		}
		return parts[0] + "-" + parts[1], nil
	default:
		return "", model.NewError(model.CodeParameter, "未知市场类型: %q", tradeType)
	}
}
