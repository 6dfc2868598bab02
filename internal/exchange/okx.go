package exchange

import (
	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"unitrade/internal/config"
	"unitrade/internal/model"
	"unitrade/internal/symbol"
)

// NewOKX 创建 OKX 接入实例。OKX 单一客户端覆盖全部市场类型。
func NewOKX(cfg config.ExchangeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := ccxt.NewOkx(ccxtUserConfig(cfg))
	if cfg.UseSandbox {
		client.SetSandboxMode(true)
	}

	resolver, err := symbol.NewResolver(symbol.ExchangeOKX)
	if err != nil {
		return nil, err
	}

	return &Client{
		name:     symbol.ExchangeOKX,
		resolver: resolver,
		logger:   logger.With(zap.String("exchange", symbol.ExchangeOKX)),
		retry:    cfg.Retry,
		limits: model.BatchOrderLimits{
			MaxBatchSize: 20,
			SupportedTradeTypes: []model.TradeType{
				model.TradeTypeSpot,
				model.TradeTypeLinear,
				model.TradeTypeInverse,
			},
		},
		apis: map[model.TradeType]ccxtAPI{
			model.TradeTypeSpot:    client,
			model.TradeTypeLinear:  client,
			model.TradeTypeInverse: client,
		},
		ccxtSymbol: okxCcxtSymbol,
	}, nil
}

func okxCcxtSymbol(base, quote string, tradeType model.TradeType) string {
	switch tradeType {
	case model.TradeTypeLinear:
		return base + "/" + quote + ":" + quote
	case model.TradeTypeInverse:
		return base + "/USD:" + base
	default:
		return base + "/" + quote
	}
}
