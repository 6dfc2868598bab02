package validate

import (
	"strings"

	"github.com/shopspring/decimal"

	"unitrade/internal/model"
)

// Balance 校验账户资金或持仓是否满足本次下单。
// 现货买入按计价货币、卖出按基础货币计算所需余额；
// 合约开仓按保证金货币（线性为计价货币，反向为基础货币）除以杠杆计算；
// 合约平仓不校验余额，改为校验持仓量是否足额。
func Balance(params *model.PlaceOrderParams, info *model.SymbolInfo, balances []model.Balance, currentPrice float64, positions []model.Position) *model.Error {
	if params == nil || info == nil {
		return model.NewError(model.CodeParameter, "余额校验缺少参数")
	}

	effectivePrice := params.Price
	if effectivePrice <= 0 {
		effectivePrice = currentPrice
	}
	if effectivePrice <= 0 {
		return model.NewError(model.CodeParameter, "缺少有效价格，无法计算所需资金")
	}

	qty := decimal.NewFromFloat(params.Quantity)
	price := decimal.NewFromFloat(effectivePrice)

	if params.TradeType == model.TradeTypeSpot {
		if params.Side == model.OrderSideBuy {
			required := qty.Mul(price)
			return requireFree(balances, info.Quote, required)
		}
		return requireFree(balances, info.Base, qty)
	}

	// 合约市场：买入开多/卖出开空为开仓，其余为平仓。
	opening := (params.Side == model.OrderSideBuy && params.PositionSide == model.PositionSideLong) ||
		(params.Side == model.OrderSideSell && params.PositionSide == model.PositionSideShort)

	if opening {
		leverage := params.Leverage
		if leverage <= 0 {
			leverage = 1
		}
		required := qty.Mul(price).Div(decimal.NewFromInt(int64(leverage)))

		marginAsset := info.Quote
		if params.TradeType == model.TradeTypeInverse {
			marginAsset = info.Base
		}
		return requireFree(balances, marginAsset, required)
	}

	return requirePosition(params, positions)
}

// requireFree 校验指定资产的可用余额不低于所需数额。
func requireFree(balances []model.Balance, asset string, required decimal.Decimal) *model.Error {
	var free decimal.Decimal
	for _, b := range balances {
		if strings.EqualFold(b.Asset, asset) {
			free = b.FreeDecimal()
			break
		}
	}

	if free.LessThan(required) {
		return model.NewError(model.CodeInsufficientBalance,
			"%s 余额不足: 需要 %s, 可用 %s", asset, required.String(), free.String())
	}
	return nil
}

// requirePosition 平仓时校验持仓量足额。
func requirePosition(params *model.PlaceOrderParams, positions []model.Position) *model.Error {
	var held float64
	for _, p := range positions {
		if p.Symbol == params.Symbol && p.Side == params.PositionSide {
			if p.Amount < 0 {
				held = -p.Amount
			} else {
				held = p.Amount
			}
			break
		}
	}

	if held < params.Quantity {
		return model.NewError(model.CodeInsufficientPosition,
			"持仓不足: 需要 %v, 当前 %v", params.Quantity, held)
	}
	return nil
}
