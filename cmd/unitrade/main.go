package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"unitrade/internal/app"
	"unitrade/internal/config"
	"unitrade/internal/indicator"
	"unitrade/internal/log"
	"unitrade/internal/model"
	"unitrade/internal/store"
)

func main() {
	var configPath string
	var symbolFlag string
	var tradeTypeFlag string
	flag.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.StringVar(&symbolFlag, "symbol", "BTC-USDT", "自检使用的统一符号")
	flag.StringVar(&tradeTypeFlag, "type", "spot", "市场类型: spot | linear | inverse")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	var sqliteStore *store.Store
	if !cfg.Database.Disabled {
		sqliteStore, err = store.NewSQLite(cfg.Database)
		if err != nil {
			logger.Error("初始化数据库失败", zap.Error(err))
			os.Exit(1)
		}
		defer func() {
			if closeErr := sqliteStore.Close(); closeErr != nil {
				logger.Warn("关闭数据库失败", zap.Error(closeErr))
			}
		}()
	}

	application, err := app.New(cfg, logger, sqliteStore)
	if err != nil {
		logger.Error("装配组件失败", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 自检：拉取交易对元信息与最新价，验证交易所连通与符号解析。
	tradeType := model.TradeType(tradeTypeFlag)
	info, price, err := application.MarketData.SymbolInfoAndPrice(ctx, symbolFlag, tradeType)
	if err != nil {
		logger.Error("自检失败", zap.String("symbol", symbolFlag), zap.Error(err))
		os.Exit(1)
	}

	logger.Info("自检通过",
		zap.String("symbol", info.Symbol),
		zap.String("raw_symbol", info.RawSymbol),
		zap.String("trade_type", string(info.TradeType)),
		zap.String("tick_size", info.TickSize),
		zap.String("step_size", info.StepSize),
		zap.Float64("last_price", price),
	)

	// 附带输出一份市场快照，便于确认行情链路完整。
	candles, err := application.MarketData.Candles(ctx, symbolFlag, tradeType, "1h", 100)
	if err != nil {
		logger.Warn("拉取K线失败", zap.Error(err))
		return
	}
	snapshot, err := indicator.NewCalculator().Compute("1h", candles)
	if err != nil {
		logger.Warn("计算指标失败", zap.Error(err))
		return
	}
	logger.Info("市场快照",
		zap.Float64("close", snapshot.Close),
		zap.Float64("ema_fast", snapshot.EMAFast),
		zap.Float64("ema_slow", snapshot.EMASlow),
		zap.Float64("rsi", snapshot.RSI),
		zap.Float64("atr_relative", snapshot.ATRRelative),
	)
}
