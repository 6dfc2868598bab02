package trade

import (
	"context"

	"go.uber.org/zap"

	"unitrade/internal/model"
	"unitrade/internal/precision"
	"unitrade/internal/validate"
)

// PlaceStrategyOrder 构造并提交策略委托（止损/止盈/计划/跟踪）。
func (s *Service) PlaceStrategyOrder(ctx context.Context, params *model.StrategyOrderParams) (*model.StrategyOrder, error) {
	if params == nil {
		return nil, model.NewError(model.CodeParameter, "策略委托参数不能为空")
	}

	info, err := s.marketData.SymbolInfo(ctx, params.Symbol, params.TradeType)
	if err != nil {
		return nil, model.AsError(err)
	}

	req, verr := buildStrategyRequest(params, info, s.opts.ClientIDTag)
	if verr != nil {
		return nil, verr
	}

	order, err := s.capability.PlaceStrategyOrder(ctx, req)
	if err != nil {
		return nil, model.AsError(err)
	}

	if s.journal != nil && order != nil {
		if jerr := s.journal.RecordStrategyOrder(ctx, s.capability.Exchange(), order); jerr != nil {
			s.logger.Warn("策略委托流水记录失败", zap.Error(jerr))
		}
	}
	s.logger.Info("策略委托已提交",
		zap.String("exchange", s.capability.Exchange()),
		zap.String("symbol", params.Symbol),
		zap.String("kind", string(params.Kind)),
		zap.String("strategy_order_id", order.StrategyOrderID),
	)
	return order, nil
}

// CancelStrategyOrder 撤销策略委托。
func (s *Service) CancelStrategyOrder(ctx context.Context, symbol string, tradeType model.TradeType, strategyOrderID string) error {
	if strategyOrderID == "" {
		return model.NewError(model.CodeParameter, "策略委托单号不能为空")
	}
	if err := s.capability.CancelStrategyOrder(ctx, symbol, tradeType, strategyOrderID); err != nil {
		return model.AsError(err)
	}
	return nil
}

// GetOpenStrategyOrders 查询未触发的策略委托。
func (s *Service) GetOpenStrategyOrders(ctx context.Context, symbol string, tradeType model.TradeType) ([]*model.StrategyOrder, error) {
	orders, err := s.capability.GetOpenStrategyOrders(ctx, symbol, tradeType)
	if err != nil {
		return nil, model.AsError(err)
	}
	return orders, nil
}

// buildStrategyRequest 校验策略参数并构造交易所算法单请求。
// 校验沿用普通下单的顺序，再补充各策略类型的触发条件要求；
// 所有数值字段经过同一套精度处理。
func buildStrategyRequest(params *model.StrategyOrderParams, info *model.SymbolInfo, clientIDTag string) (*StrategyRequest, *model.Error) {
	orderParams := &model.PlaceOrderParams{
		Symbol:       params.Symbol,
		TradeType:    params.TradeType,
		Side:         params.Side,
		Type:         model.OrderTypeMarket,
		Quantity:     params.Quantity,
		PositionSide: params.PositionSide,
		ReduceOnly:   params.ReduceOnly,
	}
	if params.OrderPrice > 0 {
		orderParams.Type = model.OrderTypeLimit
		orderParams.Price = params.OrderPrice
	}
	if verr := validate.Order(orderParams, info); verr != nil {
		return nil, verr
	}

	switch params.Kind {
	case model.StrategyKindStopLoss, model.StrategyKindTakeProfit:
		if params.TriggerPrice <= 0 {
			return nil, model.NewError(model.CodeParameter, "%s 必须指定触发价", params.Kind)
		}
	case model.StrategyKindTrigger:
		if params.TriggerPrice <= 0 {
			return nil, model.NewError(model.CodeParameter, "计划委托必须指定触发价")
		}
		if params.OrderPrice <= 0 {
			return nil, model.NewError(model.CodeParameter, "计划委托必须指定委托价")
		}
	case model.StrategyKindTrailingStop:
		if params.TriggerPrice <= 0 && params.ActivationPrice <= 0 {
			return nil, model.NewError(model.CodeParameter, "跟踪委托必须指定激活价或触发价")
		}
		if params.CallbackRatio <= 0 && params.CallbackSpread <= 0 {
			return nil, model.NewError(model.CodeParameter, "跟踪委托必须指定回调比例或回调价差")
		}
		if params.CallbackRatio > 0 && params.CallbackSpread > 0 {
			return nil, model.NewError(model.CodeParameter, "回调比例与回调价差只能二选一")
		}
	case model.StrategyKindOCO:
		if params.TakeProfitTriggerPrice <= 0 && params.StopLossTriggerPrice <= 0 {
			return nil, model.NewError(model.CodeParameter, "OCO 委托至少指定止盈或止损触发价之一")
		}
	default:
		return nil, model.NewError(model.CodeParameter, "未知策略类型: %q", params.Kind)
	}

	req := &StrategyRequest{
		Params:     *params,
		Info:       info,
		AlgoParams: make(map[string]interface{}),
	}

	qtyText, err := precision.FormatQuantity(params.Quantity, info.StepSize)
	if err != nil {
		return nil, model.WrapError(model.CodeParameter, err, "数量精度处理失败")
	}
	if verr := validate.FormattedQuantity(qtyText, info); verr != nil {
		return nil, verr
	}
	req.QuantityText = qtyText

	formatPrice := func(v float64, what string) (string, *model.Error) {
		if v <= 0 {
			return "", nil
		}
		text, err := precision.FormatPrice(v, info.TickSize)
		if err != nil {
			return "", model.WrapError(model.CodeParameter, err, "%s精度处理失败", what)
		}
		return text, nil
	}

	var perr *model.Error
	if req.TriggerPriceText, perr = formatPrice(params.TriggerPrice, "触发价"); perr != nil {
		return nil, perr
	}
	if req.OrderPriceText, perr = formatPrice(params.OrderPrice, "委托价"); perr != nil {
		return nil, perr
	}
	if req.ActivationPriceText, perr = formatPrice(params.ActivationPrice, "激活价"); perr != nil {
		return nil, perr
	}

	if req.Params.ClientOrderID == "" {
		req.Params.ClientOrderID = NewClientOrderID(clientIDTag, params.TradeType)
	}

	triggerType := params.TriggerPriceType
	if triggerType == "" {
		triggerType = model.TriggerPriceLast
	}
	req.AlgoParams["triggerPriceType"] = string(triggerType)
	if params.ReduceOnly {
		req.AlgoParams["reduceOnly"] = true
	}

	switch params.Kind {
	case model.StrategyKindStopLoss:
		req.AlgoParams["stopLossPrice"] = req.TriggerPriceText
	case model.StrategyKindTakeProfit:
		req.AlgoParams["takeProfitPrice"] = req.TriggerPriceText
	case model.StrategyKindTrigger:
		req.AlgoParams["triggerPrice"] = req.TriggerPriceText
	case model.StrategyKindTrailingStop:
		if params.CallbackRatio > 0 {
			// 交易所按百分比接收回调比例。
			req.AlgoParams["trailingPercent"] = params.CallbackRatio * 100
		} else {
			req.AlgoParams["trailingAmount"] = params.CallbackSpread
		}
		// 激活价缺省时以触发价充当激活价。
		if req.ActivationPriceText == "" {
			req.ActivationPriceText = req.TriggerPriceText
		}
		if req.ActivationPriceText != "" {
			req.AlgoParams["activationPrice"] = req.ActivationPriceText
		}
	case model.StrategyKindOCO:
		if tp, perr := formatPrice(params.TakeProfitTriggerPrice, "止盈触发价"); perr != nil {
			return nil, perr
		} else if tp != "" {
			req.AlgoParams["takeProfitPrice"] = tp
		}
		if sl, perr := formatPrice(params.StopLossTriggerPrice, "止损触发价"); perr != nil {
			return nil, perr
		} else if sl != "" {
			req.AlgoParams["stopLossPrice"] = sl
		}
	}

	return req, nil
}
