// Package validate 提供下单参数与资金/持仓的纯校验逻辑，不发起任何网络调用。
package validate

import (
	"github.com/shopspring/decimal"

	"unitrade/internal/model"
)

// Order 按固定顺序对下单参数做快速失败校验，返回 nil 表示通过。
// 顺序：必填字段 → 方向 → 订单类型与价格 → 持仓方向 → 可交易 → 数量下限/上限。
func Order(params *model.PlaceOrderParams, info *model.SymbolInfo) *model.Error {
	if params == nil {
		return model.NewError(model.CodeParameter, "下单参数不能为空")
	}
	if params.Symbol == "" {
		return model.NewError(model.CodeParameter, "symbol 不能为空")
	}
	if params.TradeType == "" {
		return model.NewError(model.CodeParameter, "tradeType 不能为空")
	}

	if params.Side != model.OrderSideBuy && params.Side != model.OrderSideSell {
		return model.NewError(model.CodeParameter, "非法的下单方向: %q", params.Side)
	}

	switch params.Type {
	case model.OrderTypeLimit, model.OrderTypePostOnly:
		if params.Price <= 0 {
			return model.NewError(model.CodeParameter, "%s 订单必须指定正的价格", params.Type)
		}
	case model.OrderTypeMarket:
	default:
		return model.NewError(model.CodeParameter, "非法的订单类型: %q", params.Type)
	}

	if params.TradeType.IsContract() {
		if params.PositionSide != model.PositionSideLong && params.PositionSide != model.PositionSideShort {
			return model.NewError(model.CodeParameter, "合约订单必须指定持仓方向")
		}
	}

	if info == nil {
		return model.NewError(model.CodeSymbolUnavailable, "缺少交易对 %s 的元信息", params.Symbol)
	}
	if !info.Tradable {
		return model.NewError(model.CodeSymbolUnavailable, "交易对 %s 当前不可交易", params.Symbol)
	}

	if params.Quantity <= 0 {
		return model.NewError(model.CodeQuantityRange, "数量必须为正: %v", params.Quantity)
	}
	if info.MinQty > 0 && params.Quantity < info.MinQty {
		return model.NewError(model.CodeQuantityRange,
			"数量 %v 低于最小下单量 %v", params.Quantity, info.MinQty)
	}
	// MaxQty 为 0 表示不限制。
	if info.MaxQty > 0 && params.Quantity > info.MaxQty {
		return model.NewError(model.CodeQuantityRange,
			"数量 %v 超过最大下单量 %v", params.Quantity, info.MaxQty)
	}

	return nil
}

// FormattedQuantity 在精度截断之后复检最小下单量。
// 截断可能把临界数量压到下限之下，这一步复检不可省略。
func FormattedQuantity(quantityText string, info *model.SymbolInfo) *model.Error {
	qty, err := decimal.NewFromString(quantityText)
	if err != nil {
		return model.NewError(model.CodeParameter, "格式化数量 %q 无法解析", quantityText)
	}
	if qty.Sign() <= 0 {
		return model.NewError(model.CodeQuantityRange,
			"格式化后数量 %s 不再为正（截断导致）", quantityText)
	}
	if info.MinQty > 0 && qty.LessThan(decimal.NewFromFloat(info.MinQty)) {
		return model.NewError(model.CodeQuantityRange,
			"格式化后数量 %s 低于最小下单量 %v（截断导致）", quantityText, info.MinQty)
	}
	return nil
}
