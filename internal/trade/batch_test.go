package trade

import (
	"context"
	"errors"
	"testing"

	"unitrade/internal/model"
)

func batchParams(n int) []*model.PlaceOrderParams {
	list := make([]*model.PlaceOrderParams, n)
	for i := range list {
		list[i] = &model.PlaceOrderParams{
			Symbol:        "BTC-USDT",
			TradeType:     model.TradeTypeSpot,
			Side:          model.OrderSideBuy,
			Type:          model.OrderTypeLimit,
			Quantity:      0.01,
			Price:         50000,
			ClientOrderID: "",
		}
	}
	return list
}

func batchLimits(size int) model.BatchOrderLimits {
	return model.BatchOrderLimits{
		MaxBatchSize:        size,
		SupportedTradeTypes: []model.TradeType{model.TradeTypeSpot, model.TradeTypeLinear},
	}
}

func TestPlaceOrders_ChunksSequentially(t *testing.T) {
	src := defaultSource()
	cap := &mockCapability{limits: batchLimits(5)}
	svc := newTestService(src, cap, Options{})

	result := svc.PlaceOrders(context.Background(), batchParams(7))

	// 7 单、批量上限 5 → 恰好 2 次提交（5+2）。
	if len(cap.batchCalls) != 2 {
		t.Fatalf("expected 2 batch calls, got %d", len(cap.batchCalls))
	}
	if len(cap.batchCalls[0]) != 5 || len(cap.batchCalls[1]) != 2 {
		t.Fatalf("chunk sizes = %d,%d, want 5,2", len(cap.batchCalls[0]), len(cap.batchCalls[1]))
	}

	if len(result.Results) != 7 {
		t.Fatalf("len(results) = %d, want 7", len(result.Results))
	}
	if result.SuccessCount != 7 || result.FailedCount != 0 {
		t.Fatalf("counts = %d/%d, want 7/0", result.SuccessCount, result.FailedCount)
	}
	for i, r := range result.Results {
		if r.Index != i {
			t.Errorf("result %d carries index %d", i, r.Index)
		}
		if !r.OK() || r.Order == nil {
			t.Errorf("result %d expected success", i)
		}
	}
}

func TestPlaceOrders_InvalidItemsExcludedFromSubmission(t *testing.T) {
	src := defaultSource()
	cap := &mockCapability{limits: batchLimits(5)}
	svc := newTestService(src, cap, Options{})

	list := batchParams(4)
	list[1].Quantity = 0      // 参数校验失败
	list[2].Symbol = "XX-YYY" // 符号解析失败

	result := svc.PlaceOrders(context.Background(), list)

	if len(result.Results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(result.Results))
	}
	if result.SuccessCount != 2 || result.FailedCount != 2 {
		t.Fatalf("counts = %d/%d, want 2/2", result.SuccessCount, result.FailedCount)
	}
	if result.Results[1].Err == nil || result.Results[1].Err.Code != model.CodeQuantityRange {
		t.Errorf("item 1 expected QUANTITY_OUT_OF_RANGE, got %v", result.Results[1].Err)
	}
	if result.Results[2].Err == nil || result.Results[2].Err.Code != model.CodeSymbolUnavailable {
		t.Errorf("item 2 expected SYMBOL_UNAVAILABLE, got %v", result.Results[2].Err)
	}

	// 预检失败的条目不进入提交批次。
	if len(cap.batchCalls) != 1 || len(cap.batchCalls[0]) != 2 {
		t.Fatalf("expected single chunk of 2 passing items")
	}

	// 成功+失败恒等于总数。
	if result.SuccessCount+result.FailedCount != len(result.Results) {
		t.Error("success+failed must equal len(results)")
	}
}

func TestPlaceOrders_PerItemRejectionIsolated(t *testing.T) {
	src := defaultSource()
	cap := &mockCapability{limits: batchLimits(5)}
	svc := newTestService(src, cap, Options{})

	list := batchParams(3)
	list[1].ClientOrderID = "reject-me"
	cap.perItemErrors = map[string]*model.Error{
		"reject-me": model.NewError(model.CodeExchangeRejected, "上游拒单"),
	}

	result := svc.PlaceOrders(context.Background(), list)

	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", result.SuccessCount, result.FailedCount)
	}
	if !model.IsCode(result.Results[1].Err, model.CodeExchangeRejected) {
		t.Errorf("item 1 expected EXCHANGE_REJECTED, got %v", result.Results[1].Err)
	}
	// 兄弟条目不受影响。
	if !result.Results[0].OK() || !result.Results[2].OK() {
		t.Error("sibling items must not be affected by one rejection")
	}
}

func TestPlaceOrders_ChunkTransportFailureMarksWholeChunk(t *testing.T) {
	src := defaultSource()
	cap := &mockCapability{
		limits:   batchLimits(5),
		batchErr: errors.New("connection reset"),
	}
	svc := newTestService(src, cap, Options{})

	result := svc.PlaceOrders(context.Background(), batchParams(3))

	if result.SuccessCount != 0 || result.FailedCount != 3 {
		t.Fatalf("counts = %d/%d, want 0/3", result.SuccessCount, result.FailedCount)
	}
	for i, r := range result.Results {
		// 整块失败标记为传输错误，与逐项拒单可区分。
		if !model.IsCode(r.Err, model.CodeTransport) {
			t.Errorf("item %d expected TRANSPORT_ERROR, got %v", i, r.Err)
		}
	}
}

func TestPlaceOrders_UnsupportedTradeType(t *testing.T) {
	src := defaultSource()
	cap := &mockCapability{limits: model.BatchOrderLimits{
		MaxBatchSize:        5,
		SupportedTradeTypes: []model.TradeType{model.TradeTypeLinear},
	}}
	svc := newTestService(src, cap, Options{})

	result := svc.PlaceOrders(context.Background(), batchParams(2))

	if result.FailedCount != 2 {
		t.Fatalf("expected all items unsupported, got %d failed", result.FailedCount)
	}
	for _, r := range result.Results {
		if !model.IsCode(r.Err, model.CodeUnsupported) {
			t.Errorf("expected UNSUPPORTED_OPERATION, got %v", r.Err)
		}
	}
	if len(cap.batchCalls) != 0 {
		t.Fatal("unsupported items must not be submitted")
	}
}

func TestPlaceOrders_EmptyInput(t *testing.T) {
	svc := newTestService(defaultSource(), &mockCapability{limits: batchLimits(5)}, Options{})
	result := svc.PlaceOrders(context.Background(), nil)
	if len(result.Results) != 0 || result.SuccessCount != 0 || result.FailedCount != 0 {
		t.Fatalf("empty input should yield empty result, got %+v", result)
	}
}
