package trade

import (
	"context"

	"go.uber.org/zap"

	"unitrade/internal/model"
	"unitrade/internal/validate"
)

// PlaceOrders 批量下单：
// 逐项独立完成符号解析、参数校验与精度处理（共享一个符号备忘录避免重复拉取），
// 通过的条目按原始顺序分块后顺序提交，结果映射回原始下标。
// 返回的 Results 长度恒等于输入长度。
// 权衡：批量路径不做资金校验，以限制账户状态调用次数。
func (s *Service) PlaceOrders(ctx context.Context, paramsList []*model.PlaceOrderParams) *model.BatchPlaceOrderResult {
	result := &model.BatchPlaceOrderResult{
		Results: make([]model.OrderResult, len(paramsList)),
	}
	if len(paramsList) == 0 {
		return result
	}

	limits := s.capability.BatchLimits()

	type pending struct {
		index     int
		formatted *model.FormattedOrderParams
		info      *model.SymbolInfo
	}

	// 符号备忘录按 symbol+tradeType 去重，仅此一处跨条目共享状态。
	memo := make(map[string]*model.SymbolInfo)
	passed := make([]pending, 0, len(paramsList))

	for i, params := range paramsList {
		result.Results[i].Index = i

		if params == nil {
			result.Results[i].Err = model.NewError(model.CodeParameter, "下单参数不能为空")
			continue
		}
		if limits.MaxBatchSize <= 0 || !limits.Supports(params.TradeType) {
			result.Results[i].Err = model.NewError(model.CodeUnsupported,
				"交易所 %s 不支持 %s 市场的批量下单", s.capability.Exchange(), params.TradeType)
			continue
		}

		memoKey := params.Symbol + "|" + string(params.TradeType)
		info, ok := memo[memoKey]
		if !ok {
			fetched, err := s.marketData.SymbolInfo(ctx, params.Symbol, params.TradeType)
			if err != nil {
				result.Results[i].Err = model.AsError(err)
				continue
			}
			info = fetched
			memo[memoKey] = info
		}

		if verr := validate.Order(params, info); verr != nil {
			result.Results[i].Err = verr
			continue
		}

		formatted, verr := FormatOrderParams(params, info)
		if verr != nil {
			result.Results[i].Err = verr
			continue
		}
		if verr := validate.FormattedQuantity(formatted.QuantityText, info); verr != nil {
			result.Results[i].Err = verr
			continue
		}
		if formatted.ClientOrderID == "" {
			formatted.ClientOrderID = NewClientOrderID(s.opts.ClientIDTag, params.TradeType)
		}

		passed = append(passed, pending{index: i, formatted: formatted, info: info})
	}

	// 分块顺序提交，遵守交易所批量限制，同时保持结果顺序简单。
	for start := 0; start < len(passed); start += limits.MaxBatchSize {
		end := start + limits.MaxBatchSize
		if end > len(passed) {
			end = len(passed)
		}
		chunk := passed[start:end]

		items := make([]*model.FormattedOrderParams, len(chunk))
		infos := make([]*model.SymbolInfo, len(chunk))
		for i, p := range chunk {
			items[i] = p.formatted
			infos[i] = p.info
		}

		outcomes, err := s.capability.DoBatchPlaceOrder(ctx, items, infos)
		if err != nil {
			// 整块传输失败：块内每个条目都标记为同一传输错误，
			// 与逐项拒单（EXCHANGE_REJECTED）通过错误码区分，
			// 客户端订单号是否可安全复用由调用方依据错误码决定。
			chunkErr := model.AsError(err)
			for _, p := range chunk {
				result.Results[p.index].Err = chunkErr
			}
			s.logger.Warn("批量下单块提交失败",
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			continue
		}

		for i, p := range chunk {
			if i < len(outcomes) {
				outcome := outcomes[i]
				result.Results[p.index].Order = outcome.Order
				result.Results[p.index].Err = outcome.Err
			} else {
				result.Results[p.index].Err = model.NewError(model.CodeTransport,
					"交易所批量响应条目数不足")
			}
		}
	}

	for i := range result.Results {
		if result.Results[i].OK() {
			result.SuccessCount++
			s.recordOrder(ctx, result.Results[i].Order)
		} else {
			result.FailedCount++
		}
	}

	s.logger.Info("批量下单完成",
		zap.String("exchange", s.capability.Exchange()),
		zap.Int("total", len(paramsList)),
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailedCount),
	)
	return result
}
