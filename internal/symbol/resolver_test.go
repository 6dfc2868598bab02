package symbol

import (
	"testing"

	"unitrade/internal/model"
)

func TestBinanceResolver_RoundTrip(t *testing.T) {
	r := &BinanceResolver{}

	cases := []struct {
		symbol    string
		tradeType model.TradeType
		raw       string
	}{
		{"BTC-USDT", model.TradeTypeSpot, "BTCUSDT"},
		{"ETH-BTC", model.TradeTypeSpot, "ETHBTC"},
		{"BTC-USDT", model.TradeTypeLinear, "BTCUSDT"},
		{"1000PEPE-USDC", model.TradeTypeLinear, "1000PEPEUSDC"},
	}

	for _, tc := range cases {
		raw, err := r.ToRaw(tc.symbol, tc.tradeType)
		if err != nil {
			t.Fatalf("ToRaw(%s, %s) error: %v", tc.symbol, tc.tradeType, err)
		}
		if raw != tc.raw {
			t.Errorf("ToRaw(%s, %s) = %s, want %s", tc.symbol, tc.tradeType, raw, tc.raw)
		}

		back, err := r.FromRaw(raw, tc.tradeType)
		if err != nil {
			t.Fatalf("FromRaw(%s, %s) error: %v", raw, tc.tradeType, err)
		}
		if back != tc.symbol {
			t.Errorf("round trip %s: got %s", tc.symbol, back)
		}
	}
}

func TestBinanceResolver_Inverse(t *testing.T) {
	r := &BinanceResolver{}

	raw, err := r.ToRaw("BTC-USD", model.TradeTypeInverse)
	if err != nil {
		t.Fatalf("ToRaw error: %v", err)
	}
	// 交割日期无法从统一符号推出，统一映射到永续。
	if raw != "BTCUSD_PERP" {
		t.Errorf("ToRaw inverse = %s, want BTCUSD_PERP", raw)
	}

	for _, rawSym := range []string{"BTCUSD_PERP", "BTCUSD_240329", "BTCUSD_240628"} {
		sym, err := r.FromRaw(rawSym, model.TradeTypeInverse)
		if err != nil {
			t.Fatalf("FromRaw(%s) error: %v", rawSym, err)
		}
		if sym != "BTC-USD" {
			t.Errorf("FromRaw(%s) = %s, want BTC-USD", rawSym, sym)
		}
	}
}

func TestOKXResolver_RoundTrip(t *testing.T) {
	r := &OKXResolver{}

	raw, err := r.ToRaw("BTC-USDT", model.TradeTypeLinear)
	if err != nil {
		t.Fatalf("ToRaw error: %v", err)
	}
	if raw != "BTC-USDT-SWAP" {
		t.Errorf("ToRaw linear = %s, want BTC-USDT-SWAP", raw)
	}

	sym, err := r.FromRaw(raw, model.TradeTypeLinear)
	if err != nil {
		t.Fatalf("FromRaw error: %v", err)
	}
	if sym != "BTC-USDT" {
		t.Errorf("round trip got %s", sym)
	}

	sym, err = r.FromRaw("BTC-USD-240329", model.TradeTypeInverse)
	if err != nil {
		t.Fatalf("FromRaw error: %v", err)
	}
	if sym != "BTC-USD" {
		t.Errorf("FromRaw delivery = %s, want BTC-USD", sym)
	}
}

func TestSplitConcatenated_LongestMatch(t *testing.T) {
	// BTCUSDC 应识别为 BTC/USDC 而不是 BTCUSD/C 或 BTC/USD。
	base, quote, err := splitConcatenated("BTCUSDC")
	if err != nil {
		t.Fatalf("splitConcatenated error: %v", err)
	}
	if base != "BTC" || quote != "USDC" {
		t.Errorf("got %s/%s, want BTC/USDC", base, quote)
	}

	if _, _, err := splitConcatenated("XYZ"); err == nil {
		t.Fatal("expected error for unknown quote")
	}
}

func TestCoinContractsConversion(t *testing.T) {
	info := &model.SymbolInfo{
		Symbol:             "BTC-USD",
		TradeType:          model.TradeTypeInverse,
		ContractMultiplier: 100,
	}

	// 0.5 BTC * 50000 / 100 = 250 张
	contracts, err := CoinToContracts(info, 0.5, 50000)
	if err != nil {
		t.Fatalf("CoinToContracts error: %v", err)
	}
	if contracts != 250 {
		t.Errorf("CoinToContracts = %v, want 250", contracts)
	}

	// 向下取整：0.0015 BTC * 50000 / 100 = 0.75 → 0 张
	contracts, err = CoinToContracts(info, 0.0015, 50000)
	if err != nil {
		t.Fatalf("CoinToContracts error: %v", err)
	}
	if contracts != 0 {
		t.Errorf("CoinToContracts = %v, want 0", contracts)
	}

	// 反算不取整，表示上界。
	coin, err := ContractsToCoin(info, 250, 50000)
	if err != nil {
		t.Fatalf("ContractsToCoin error: %v", err)
	}
	if coin != 0.5 {
		t.Errorf("ContractsToCoin = %v, want 0.5", coin)
	}

	spot := &model.SymbolInfo{Symbol: "BTC-USDT", TradeType: model.TradeTypeSpot}
	if _, err := CoinToContracts(spot, 1, 50000); !model.IsCode(err, model.CodeUnsupported) {
		t.Errorf("expected UNSUPPORTED_OPERATION for spot, got %v", err)
	}
}

func TestResolveQuarterContract(t *testing.T) {
	candidates := []string{"BTCUSD_PERP", "BTCUSD_240628", "BTCUSD_240329"}

	got, err := ResolveQuarterContract("BTC", candidates, QuarterCurrent)
	if err != nil {
		t.Fatalf("ResolveQuarterContract error: %v", err)
	}
	if got != "BTCUSD_240329" {
		t.Errorf("current quarter = %s, want BTCUSD_240329", got)
	}

	got, err = ResolveQuarterContract("BTC", candidates, QuarterNext)
	if err != nil {
		t.Fatalf("ResolveQuarterContract error: %v", err)
	}
	if got != "BTCUSD_240628" {
		t.Errorf("next quarter = %s, want BTCUSD_240628", got)
	}

	// 没有带日期的合约时回退到永续。
	got, err = ResolveQuarterContract("BTC", []string{"BTCUSD_PERP"}, QuarterCurrent)
	if err != nil {
		t.Fatalf("ResolveQuarterContract error: %v", err)
	}
	if got != "BTCUSD_PERP" {
		t.Errorf("fallback = %s, want BTCUSD_PERP", got)
	}

	if _, err := ResolveQuarterContract("BTC", nil, QuarterCurrent); !model.IsCode(err, model.CodeSymbolUnavailable) {
		t.Errorf("expected SYMBOL_UNAVAILABLE for empty list, got %v", err)
	}
}

func TestResolveQuarterContract_OKXStyle(t *testing.T) {
	candidates := []string{"BTC-USD-SWAP", "BTC-USD-240329", "BTC-USD-240628"}

	got, err := ResolveQuarterContract("BTC", candidates, QuarterNext)
	if err != nil {
		t.Fatalf("ResolveQuarterContract error: %v", err)
	}
	if got != "BTC-USD-240628" {
		t.Errorf("next quarter = %s, want BTC-USD-240628", got)
	}
}
