package symbol

import (
	"testing"
	"time"

	"unitrade/internal/model"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache(time.Minute)
	info := &model.SymbolInfo{Symbol: "BTC-USDT", TradeType: model.TradeTypeSpot}

	if _, ok := c.Get(ExchangeBinance, model.TradeTypeSpot, "BTC-USDT"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put(ExchangeBinance, model.TradeTypeSpot, "BTC-USDT", info)

	got, ok := c.Get(ExchangeBinance, model.TradeTypeSpot, "BTC-USDT")
	if !ok || got.Symbol != "BTC-USDT" {
		t.Fatalf("expected hit, got %v ok=%v", got, ok)
	}

	// 不同市场类型互不串扰。
	if _, ok := c.Get(ExchangeBinance, model.TradeTypeLinear, "BTC-USDT"); ok {
		t.Fatal("expected miss for different trade type")
	}
}

func TestCache_LazyExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	info := &model.SymbolInfo{Symbol: "BTC-USDT"}

	c.Put(ExchangeBinance, model.TradeTypeSpot, "BTC-USDT", info)
	time.Sleep(20 * time.Millisecond)

	// 过期后没有后台定时器清除，条目仍在。
	if c.Len() != 1 {
		t.Fatalf("expected stale entry to remain before read, len=%d", c.Len())
	}

	// 读取时惰性清除并按未命中处理。
	if _, ok := c.Get(ExchangeBinance, model.TradeTypeSpot, "BTC-USDT"); ok {
		t.Fatal("expected miss after ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expected entry purged on read, len=%d", c.Len())
	}
}
