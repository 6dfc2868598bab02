package exchange

import (
	"strings"

	"go.uber.org/zap"

	"unitrade/internal/config"
	"unitrade/internal/market"
	"unitrade/internal/model"
	"unitrade/internal/symbol"
	"unitrade/internal/trade"
)

var (
	_ market.Source              = (*Client)(nil)
	_ trade.SubmissionCapability = (*Client)(nil)
)

// New 按交易所名称创建接入实例。
func New(cfg config.ExchangeConfig, logger *zap.Logger) (*Client, error) {
	switch strings.ToLower(cfg.Name) {
	case symbol.ExchangeBinance:
		return NewBinance(cfg, logger)
	case symbol.ExchangeOKX:
		return NewOKX(cfg, logger)
	default:
		return nil, model.NewError(model.CodeUnsupported, "不支持的交易所: %q", cfg.Name)
	}
}
