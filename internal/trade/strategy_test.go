package trade

import (
	"context"
	"testing"

	"unitrade/internal/model"
)

func linearStrategyInfo() *model.SymbolInfo {
	return &model.SymbolInfo{
		Symbol:    "BTC-USDT",
		RawSymbol: "BTCUSDT",
		Base:      "BTC",
		Quote:     "USDT",
		TradeType: model.TradeTypeLinear,
		TickSize:  "0.1",
		StepSize:  "0.001",
		MinQty:    0.001,
		Tradable:  true,
	}
}

func baseStrategyParams() *model.StrategyOrderParams {
	return &model.StrategyOrderParams{
		Symbol:       "BTC-USDT",
		TradeType:    model.TradeTypeLinear,
		Side:         model.OrderSideSell,
		Kind:         model.StrategyKindStopLoss,
		Quantity:     0.5,
		TriggerPrice: 45000.07,
		PositionSide: model.PositionSideLong,
		ReduceOnly:   true,
	}
}

func TestBuildStrategyRequest_StopLoss(t *testing.T) {
	req, verr := buildStrategyRequest(baseStrategyParams(), linearStrategyInfo(), "bn")
	if verr != nil {
		t.Fatalf("buildStrategyRequest error: %v", verr)
	}

	if req.QuantityText != "0.500" {
		t.Errorf("quantity = %s, want 0.500", req.QuantityText)
	}
	// 触发价按 tick 0.1 截断。
	if req.TriggerPriceText != "45000.0" {
		t.Errorf("trigger price = %s, want 45000.0", req.TriggerPriceText)
	}
	if req.AlgoParams["stopLossPrice"] != "45000.0" {
		t.Errorf("algo stopLossPrice = %v", req.AlgoParams["stopLossPrice"])
	}
	if req.AlgoParams["triggerPriceType"] != "last" {
		t.Errorf("default trigger price type = %v, want last", req.AlgoParams["triggerPriceType"])
	}
	if req.AlgoParams["reduceOnly"] != true {
		t.Errorf("expected reduceOnly param")
	}
	if req.Params.ClientOrderID == "" {
		t.Error("expected generated client order id")
	}
}

func TestBuildStrategyRequest_KindRequirements(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *model.StrategyOrderParams)
	}{
		{"止损缺触发价", func(p *model.StrategyOrderParams) { p.TriggerPrice = 0 }},
		{"计划缺委托价", func(p *model.StrategyOrderParams) {
			p.Kind = model.StrategyKindTrigger
			p.OrderPrice = 0
		}},
		{"跟踪缺回调", func(p *model.StrategyOrderParams) {
			p.Kind = model.StrategyKindTrailingStop
			p.ActivationPrice = 46000
			p.CallbackRatio = 0
			p.CallbackSpread = 0
		}},
		{"跟踪回调二选一", func(p *model.StrategyOrderParams) {
			p.Kind = model.StrategyKindTrailingStop
			p.ActivationPrice = 46000
			p.CallbackRatio = 0.01
			p.CallbackSpread = 100
		}},
		{"OCO缺触发价", func(p *model.StrategyOrderParams) {
			p.Kind = model.StrategyKindOCO
			p.TriggerPrice = 0
			p.TakeProfitTriggerPrice = 0
			p.StopLossTriggerPrice = 0
		}},
		{"未知类型", func(p *model.StrategyOrderParams) { p.Kind = "iceberg" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := baseStrategyParams()
			tc.mutate(params)
			if _, verr := buildStrategyRequest(params, linearStrategyInfo(), "bn"); verr == nil {
				t.Fatal("expected parameter error")
			}
		})
	}
}

func TestBuildStrategyRequest_TrailingStop(t *testing.T) {
	params := baseStrategyParams()
	params.Kind = model.StrategyKindTrailingStop
	params.TriggerPrice = 0
	params.ActivationPrice = 52000.05
	params.CallbackRatio = 0.015

	req, verr := buildStrategyRequest(params, linearStrategyInfo(), "bn")
	if verr != nil {
		t.Fatalf("buildStrategyRequest error: %v", verr)
	}

	if req.AlgoParams["trailingPercent"] != 1.5 {
		t.Errorf("trailingPercent = %v, want 1.5", req.AlgoParams["trailingPercent"])
	}
	if req.AlgoParams["activationPrice"] != "52000.0" {
		t.Errorf("activationPrice = %v, want 52000.0", req.AlgoParams["activationPrice"])
	}
}

func TestBuildStrategyRequest_OCO(t *testing.T) {
	params := baseStrategyParams()
	params.Kind = model.StrategyKindOCO
	params.TriggerPrice = 0
	params.TakeProfitTriggerPrice = 55000
	params.StopLossTriggerPrice = 45000

	req, verr := buildStrategyRequest(params, linearStrategyInfo(), "bn")
	if verr != nil {
		t.Fatalf("buildStrategyRequest error: %v", verr)
	}
	if req.AlgoParams["takeProfitPrice"] != "55000.0" {
		t.Errorf("takeProfitPrice = %v", req.AlgoParams["takeProfitPrice"])
	}
	if req.AlgoParams["stopLossPrice"] != "45000.0" {
		t.Errorf("stopLossPrice = %v", req.AlgoParams["stopLossPrice"])
	}
}

func TestPlaceStrategyOrder_EndToEnd(t *testing.T) {
	src := defaultSource()
	src.infos["BTC-USDT|linear"] = linearStrategyInfo()
	cap := &mockCapability{}
	svc := newTestService(src, cap, Options{ClientIDTag: "bn"})

	order, err := svc.PlaceStrategyOrder(context.Background(), baseStrategyParams())
	if err != nil {
		t.Fatalf("PlaceStrategyOrder error: %v", err)
	}
	if order.StrategyOrderID == "" {
		t.Fatal("expected strategy order id")
	}
	if len(cap.strategyCalls) != 1 {
		t.Fatalf("expected 1 capability call, got %d", len(cap.strategyCalls))
	}
}

func TestCancelStrategyOrder_RequiresID(t *testing.T) {
	svc := newTestService(defaultSource(), &mockCapability{}, Options{})
	err := svc.CancelStrategyOrder(context.Background(), "BTC-USDT", model.TradeTypeLinear, "")
	if !model.IsCode(err, model.CodeParameter) {
		t.Fatalf("expected PARAMETER_ERROR, got %v", err)
	}
}
