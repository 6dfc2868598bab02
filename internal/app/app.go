// Package app 是组合根：按配置装配交易所接入、行情适配与下单服务。
package app

import (
	"go.uber.org/zap"

	"unitrade/internal/config"
	"unitrade/internal/exchange"
	"unitrade/internal/market"
	"unitrade/internal/store"
	"unitrade/internal/symbol"
	"unitrade/internal/trade"
)

// App 持有装配完成的各层组件。
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	Client     *exchange.Client
	MarketData *market.Adapter
	Trade      *trade.Service
}

// New 按配置装配全部组件。sqliteStore 可为 nil，此时不记录订单流水。
func New(cfg *config.Config, logger *zap.Logger, sqliteStore *store.Store) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := exchange.New(cfg.Exchange, logger)
	if err != nil {
		return nil, err
	}

	cache := symbol.NewCache(cfg.SymbolCache.TTL)
	adapter := market.NewAdapter(client, client.Resolver(), cache, logger)

	var journal trade.Journal
	if sqliteStore != nil {
		j, err := store.NewJournal(sqliteStore)
		if err != nil {
			return nil, err
		}
		journal = j
	}

	service := trade.NewService(adapter, client, journal, trade.Options{
		DefaultLeverage:  cfg.Trading.DefaultLeverage,
		SkipBalanceCheck: cfg.Trading.SkipBalanceCheck,
		ClientIDTag:      cfg.Trading.ClientIDTag,
	}, logger)

	logger.Info("组件装配完成",
		zap.String("exchange", cfg.Exchange.Name),
		zap.Bool("journal_enabled", journal != nil),
	)

	return &App{
		cfg:        cfg,
		logger:     logger,
		Client:     client,
		MarketData: adapter,
		Trade:      service,
	}, nil
}
