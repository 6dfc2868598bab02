package exchange

import (
	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"unitrade/internal/config"
	"unitrade/internal/model"
	"unitrade/internal/symbol"
)

// NewBinance 创建币安接入实例。现货、U本位与币本位
// 在 ccxt 中是三个独立客户端，按市场类型分别持有。
func NewBinance(cfg config.ExchangeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	userConfig := ccxtUserConfig(cfg)

	spot := ccxt.NewBinance(userConfig)
	linear := ccxt.NewBinanceusdm(userConfig)
	inverse := ccxt.NewBinancecoinm(userConfig)
	if cfg.UseSandbox {
		spot.SetSandboxMode(true)
		linear.SetSandboxMode(true)
		inverse.SetSandboxMode(true)
	}

	resolver, err := symbol.NewResolver(symbol.ExchangeBinance)
	if err != nil {
		return nil, err
	}

	return &Client{
		name:     symbol.ExchangeBinance,
		resolver: resolver,
		logger:   logger.With(zap.String("exchange", symbol.ExchangeBinance)),
		retry:    cfg.Retry,
		limits: model.BatchOrderLimits{
			MaxBatchSize: 5,
			SupportedTradeTypes: []model.TradeType{
				model.TradeTypeSpot,
				model.TradeTypeLinear,
				model.TradeTypeInverse,
			},
		},
		apis: map[model.TradeType]ccxtAPI{
			model.TradeTypeSpot:    spot,
			model.TradeTypeLinear:  linear,
			model.TradeTypeInverse: inverse,
		},
		ccxtSymbol: binanceCcxtSymbol,
	}, nil
}

// binanceCcxtSymbol 生成 ccxt 统一符号：现货 BTC/USDT、
// U本位 BTC/USDT:USDT、币本位 BTC/USD:BTC。
func binanceCcxtSymbol(base, quote string, tradeType model.TradeType) string {
	switch tradeType {
	case model.TradeTypeLinear:
		return base + "/" + quote + ":" + quote
	case model.TradeTypeInverse:
		return base + "/USD:" + base
	default:
		return base + "/" + quote
	}
}

func ccxtUserConfig(cfg config.ExchangeConfig) map[string]interface{} {
	userConfig := map[string]interface{}{
		"enableRateLimit": true,
	}
	if cfg.APIKey != "" {
		userConfig["apiKey"] = cfg.APIKey
	}
	if cfg.APISecret != "" {
		userConfig["secret"] = cfg.APISecret
	}
	if cfg.APIPass != "" {
		userConfig["password"] = cfg.APIPass
	}
	return userConfig
}
