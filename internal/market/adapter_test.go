package market

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"unitrade/internal/model"
	"unitrade/internal/symbol"
)

type mockSource struct {
	symbolInfoCalls int32
	priceCalls      int32
	priceDelay      time.Duration
	allSymbols      []*model.SymbolInfo
}

func (m *mockSource) Exchange() string { return symbol.ExchangeBinance }

func (m *mockSource) GetSymbolInfo(ctx context.Context, sym string, t model.TradeType) (*model.SymbolInfo, error) {
	atomic.AddInt32(&m.symbolInfoCalls, 1)
	return &model.SymbolInfo{
		Symbol:    sym,
		TradeType: t,
		TickSize:  "0.01",
		StepSize:  "0.001",
		MinQty:    0.001,
		Tradable:  true,
	}, nil
}

func (m *mockSource) GetAllSymbols(ctx context.Context, t model.TradeType) ([]*model.SymbolInfo, error) {
	return m.allSymbols, nil
}

func (m *mockSource) GetPrice(ctx context.Context, sym string, t model.TradeType) (float64, error) {
	atomic.AddInt32(&m.priceCalls, 1)
	if m.priceDelay > 0 {
		time.Sleep(m.priceDelay)
	}
	return 50000, nil
}

func (m *mockSource) GetMarkPrice(ctx context.Context, sym string, t model.TradeType) (float64, error) {
	return 50001, nil
}

func (m *mockSource) GetTicker(ctx context.Context, sym string, t model.TradeType) (*model.Ticker, error) {
	return &model.Ticker{Symbol: sym, Last: 50000}, nil
}

func (m *mockSource) GetOrderBook(ctx context.Context, sym string, t model.TradeType, depth int) (*model.OrderBook, error) {
	return &model.OrderBook{Symbol: sym}, nil
}

func (m *mockSource) GetCandles(ctx context.Context, sym string, t model.TradeType, timeframe string, limit int) ([]model.Candle, error) {
	return nil, nil
}

func TestAdapter_SymbolInfoCached(t *testing.T) {
	src := &mockSource{}
	resolver := &symbol.BinanceResolver{}
	adapter := NewAdapter(src, resolver, symbol.NewCache(time.Minute), nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		info, err := adapter.SymbolInfo(ctx, "BTC-USDT", model.TradeTypeSpot)
		if err != nil {
			t.Fatalf("SymbolInfo error: %v", err)
		}
		if info.Symbol != "BTC-USDT" {
			t.Fatalf("unexpected symbol %s", info.Symbol)
		}
	}

	if calls := atomic.LoadInt32(&src.symbolInfoCalls); calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestAdapter_PriceSingleFlight(t *testing.T) {
	src := &mockSource{priceDelay: 50 * time.Millisecond}
	adapter := NewAdapter(src, &symbol.BinanceResolver{}, nil, nil)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			price, err := adapter.Price(ctx, "BTC-USDT", model.TradeTypeSpot)
			if err != nil {
				t.Errorf("Price error: %v", err)
				return
			}
			if price != 50000 {
				t.Errorf("unexpected price %v", price)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt32(&src.priceCalls); calls != 1 {
		t.Errorf("expected coalesced single upstream call, got %d", calls)
	}
}

func TestAdapter_ResolveQuarterSymbol(t *testing.T) {
	src := &mockSource{
		allSymbols: []*model.SymbolInfo{
			{Base: "BTC", RawSymbol: "BTCUSD_PERP"},
			{Base: "BTC", RawSymbol: "BTCUSD_240628"},
			{Base: "BTC", RawSymbol: "BTCUSD_240329"},
			{Base: "ETH", RawSymbol: "ETHUSD_PERP"},
		},
	}
	adapter := NewAdapter(src, &symbol.BinanceResolver{}, nil, nil)

	got, err := adapter.ResolveQuarterSymbol(context.Background(), "BTC", symbol.QuarterCurrent)
	if err != nil {
		t.Fatalf("ResolveQuarterSymbol error: %v", err)
	}
	if got != "BTCUSD_240329" {
		t.Errorf("current quarter = %s, want BTCUSD_240329", got)
	}

	got, err = adapter.ResolveQuarterSymbol(context.Background(), "ETH", symbol.QuarterNext)
	if err != nil {
		t.Fatalf("ResolveQuarterSymbol error: %v", err)
	}
	if got != "ETHUSD_PERP" {
		t.Errorf("fallback = %s, want ETHUSD_PERP", got)
	}
}
