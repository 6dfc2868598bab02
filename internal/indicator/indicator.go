// Package indicator 基于K线提供常用技术指标，
// 供限价挂单与跟踪委托的价位选择参考。
package indicator

import (
	"fmt"
	"math"
	"sync"

	talib "github.com/markcheno/go-talib"

	"unitrade/internal/model"
)

// Snapshot 为一次指标计算的汇总，所有值取最后一根已收盘K线。
type Snapshot struct {
	Timeframe string

	Close     float64
	PrevClose float64

	EMAFast float64
	EMASlow float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	RSI float64

	// ATR 绝对值与相对收盘价的比值，用于估计回调价差。
	ATR         float64
	ATRRelative float64

	BollUpper  float64
	BollMiddle float64
	BollLower  float64
}

// Calculator 计算指标并缓存最近一次结果，避免同一批K线重复计算。
type Calculator struct {
	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	key      string
	snapshot Snapshot
}

// NewCalculator 创建 Calculator。
func NewCalculator() *Calculator {
	return &Calculator{cache: make(map[string]cached)}
}

// Compute 依据给定K线计算指标，K线需按时间升序。
func (c *Calculator) Compute(timeframe string, candles []model.Candle) (Snapshot, error) {
	if len(candles) == 0 {
		return Snapshot{}, fmt.Errorf("indicator: 输入K线为空")
	}

	key := fmt.Sprintf("%s:%d:%d", timeframe, len(candles), candles[len(candles)-1].Timestamp.Unix())

	c.mu.Lock()
	if entry, ok := c.cache[timeframe]; ok && entry.key == key {
		c.mu.Unlock()
		return entry.snapshot, nil
	}
	c.mu.Unlock()

	snapshot := compute(timeframe, candles)

	c.mu.Lock()
	c.cache[timeframe] = cached{key: key, snapshot: snapshot}
	c.mu.Unlock()

	return snapshot, nil
}

func compute(timeframe string, candles []model.Candle) Snapshot {
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
		highs[i] = candle.High
		lows[i] = candle.Low
	}

	macd, macdSignal, macdHist := talib.Macd(closes, 12, 26, 9)
	bbUpper, bbMiddle, bbLower := talib.BBands(closes, 20, 2, 2, talib.EMA)
	atr := talib.Atr(highs, lows, closes, 14)

	lastClose := last(closes)
	atrAbs := last(atr)
	atrRel := 0.0
	if lastClose > 0 {
		atrRel = atrAbs / lastClose
	}

	return Snapshot{
		Timeframe:   timeframe,
		Close:       lastClose,
		PrevClose:   prev(closes),
		EMAFast:     last(talib.Ema(closes, 12)),
		EMASlow:     last(talib.Ema(closes, 26)),
		MACD:        last(macd),
		MACDSignal:  last(macdSignal),
		MACDHist:    last(macdHist),
		RSI:         last(talib.Rsi(closes, 14)),
		ATR:         atrAbs,
		ATRRelative: atrRel,
		BollUpper:   last(bbUpper),
		BollMiddle:  last(bbMiddle),
		BollLower:   last(bbLower),
	}
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

func prev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return values[len(values)-2]
}
