package trade

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"unitrade/internal/market"
	"unitrade/internal/model"
	"unitrade/internal/precision"
	"unitrade/internal/validate"
)

// Options 控制下单管线行为。
type Options struct {
	// DefaultLeverage 参数未指定杠杆时使用的默认值。
	DefaultLeverage int
	// SkipBalanceCheck 跳过资金/持仓校验，仅供测试环境使用，默认关闭。
	SkipBalanceCheck bool
	// ClientIDTag 客户端订单号前缀。
	ClientIDTag string
}

// Service 为统一交易入口，组合行情适配器与交易所提交能力。
type Service struct {
	marketData *market.Adapter
	capability SubmissionCapability
	journal    Journal
	opts       Options
	logger     *zap.Logger
}

// NewService 创建交易服务，journal 可为 nil。
func NewService(marketData *market.Adapter, capability SubmissionCapability, journal Journal, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ClientIDTag == "" {
		opts.ClientIDTag = DefaultClientIDTag
	}
	if opts.SkipBalanceCheck {
		logger.Warn("资金校验已被配置关闭，仅应在测试环境使用")
	}
	return &Service{
		marketData: marketData,
		capability: capability,
		journal:    journal,
		opts:       opts,
		logger:     logger,
	}
}

// BatchOrderLimits 返回交易所批量下单能力。
func (s *Service) BatchOrderLimits() model.BatchOrderLimits {
	return s.capability.BatchLimits()
}

// PlaceOrder 执行完整下单管线：
// 符号解析 → 参数校验 → 账户状态拉取 → 资金校验 → 精度处理 → 截断后复检 → 提交。
// 任一阶段失败立即短路返回，本层不做重试；余额与持仓每次都实时拉取，不缓存。
func (s *Service) PlaceOrder(ctx context.Context, params *model.PlaceOrderParams) (*model.Order, error) {
	if params == nil {
		return nil, model.NewError(model.CodeParameter, "下单参数不能为空")
	}

	if params.Leverage <= 0 && params.TradeType.IsContract() {
		params = cloneParams(params)
		params.Leverage = s.opts.DefaultLeverage
	}

	// 元信息与最新价并发拉取。
	info, price, err := s.marketData.SymbolInfoAndPrice(ctx, params.Symbol, params.TradeType)
	if err != nil {
		return nil, model.AsError(err)
	}

	if verr := validate.Order(params, info); verr != nil {
		return nil, verr
	}

	if !s.opts.SkipBalanceCheck {
		balances, positions, err := s.fetchAccountState(ctx, params)
		if err != nil {
			return nil, model.AsError(err)
		}
		if verr := validate.Balance(params, info, balances, price, positions); verr != nil {
			return nil, verr
		}
	}

	formatted, verr := FormatOrderParams(params, info)
	if verr != nil {
		return nil, verr
	}

	// 截断可能把临界数量压到下限之下，必须复检。
	if verr := validate.FormattedQuantity(formatted.QuantityText, info); verr != nil {
		return nil, verr
	}

	if formatted.ClientOrderID == "" {
		formatted.ClientOrderID = NewClientOrderID(s.opts.ClientIDTag, params.TradeType)
	}

	order, err := s.capability.DoPlaceOrder(ctx, formatted, info)
	if err != nil {
		return nil, model.AsError(err)
	}

	s.recordOrder(ctx, order)
	s.logger.Info("订单已提交",
		zap.String("exchange", s.capability.Exchange()),
		zap.String("symbol", params.Symbol),
		zap.String("trade_type", string(params.TradeType)),
		zap.String("side", string(params.Side)),
		zap.String("quantity", formatted.QuantityText),
		zap.String("order_id", order.OrderID),
	)
	return order, nil
}

// ValidateOrderParams 独立执行参数校验，供调用方在提交前预检。
func (s *Service) ValidateOrderParams(ctx context.Context, params *model.PlaceOrderParams) error {
	if params == nil {
		return model.NewError(model.CodeParameter, "下单参数不能为空")
	}
	info, err := s.marketData.SymbolInfo(ctx, params.Symbol, params.TradeType)
	if err != nil {
		return model.AsError(err)
	}
	if verr := validate.Order(params, info); verr != nil {
		return verr
	}
	return nil
}

// ValidateBalance 独立执行资金/持仓校验，供调用方在提交前预检。
func (s *Service) ValidateBalance(ctx context.Context, params *model.PlaceOrderParams) error {
	if params == nil {
		return model.NewError(model.CodeParameter, "下单参数不能为空")
	}
	info, price, err := s.marketData.SymbolInfoAndPrice(ctx, params.Symbol, params.TradeType)
	if err != nil {
		return model.AsError(err)
	}
	balances, positions, err := s.fetchAccountState(ctx, params)
	if err != nil {
		return model.AsError(err)
	}
	if verr := validate.Balance(params, info, balances, price, positions); verr != nil {
		return verr
	}
	return nil
}

// FormatParams 独立执行精度处理，供调用方在提交前预检。
func (s *Service) FormatParams(ctx context.Context, params *model.PlaceOrderParams) (*model.FormattedOrderParams, error) {
	if params == nil {
		return nil, model.NewError(model.CodeParameter, "下单参数不能为空")
	}
	info, err := s.marketData.SymbolInfo(ctx, params.Symbol, params.TradeType)
	if err != nil {
		return nil, model.AsError(err)
	}
	formatted, verr := FormatOrderParams(params, info)
	if verr != nil {
		return nil, verr
	}
	return formatted, nil
}

// CancelOrder 撤销订单。
func (s *Service) CancelOrder(ctx context.Context, symbol string, tradeType model.TradeType, orderID string) error {
	if orderID == "" {
		return model.NewError(model.CodeParameter, "订单号不能为空")
	}
	if err := s.capability.CancelOrder(ctx, symbol, tradeType, orderID); err != nil {
		return model.AsError(err)
	}
	return nil
}

// GetOrder 查询订单快照。
func (s *Service) GetOrder(ctx context.Context, symbol string, tradeType model.TradeType, orderID string) (*model.Order, error) {
	order, err := s.capability.GetOrder(ctx, symbol, tradeType, orderID)
	if err != nil {
		return nil, model.AsError(err)
	}
	return order, nil
}

// GetOpenOrders 查询未完成订单。
func (s *Service) GetOpenOrders(ctx context.Context, symbol string, tradeType model.TradeType) ([]*model.Order, error) {
	orders, err := s.capability.GetOpenOrders(ctx, symbol, tradeType)
	if err != nil {
		return nil, model.AsError(err)
	}
	return orders, nil
}

// GetBalances 查询账户余额。
func (s *Service) GetBalances(ctx context.Context, tradeType model.TradeType) ([]model.Balance, error) {
	balances, err := s.capability.GetBalances(ctx, tradeType)
	if err != nil {
		return nil, model.AsError(err)
	}
	return balances, nil
}

// GetPositions 查询持仓。
func (s *Service) GetPositions(ctx context.Context, symbol string, tradeType model.TradeType) ([]model.Position, error) {
	positions, err := s.capability.GetPositions(ctx, symbol, tradeType)
	if err != nil {
		return nil, model.AsError(err)
	}
	return positions, nil
}

// SetLeverage 设置杠杆，现货市场直接拒绝。
func (s *Service) SetLeverage(ctx context.Context, symbol string, tradeType model.TradeType, leverage int) error {
	if tradeType == model.TradeTypeSpot {
		return model.NewError(model.CodeUnsupported, "现货市场不支持设置杠杆")
	}
	if leverage <= 0 {
		return model.NewError(model.CodeParameter, "杠杆必须为正: %d", leverage)
	}
	if err := s.capability.SetLeverage(ctx, symbol, tradeType, leverage); err != nil {
		return model.AsError(err)
	}
	return nil
}

// fetchAccountState 并发拉取余额与持仓（现货无持仓）。
func (s *Service) fetchAccountState(ctx context.Context, params *model.PlaceOrderParams) ([]model.Balance, []model.Position, error) {
	var (
		balances  []model.Balance
		positions []model.Position
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := s.capability.GetBalances(groupCtx, params.TradeType)
		if err != nil {
			return err
		}
		balances = data
		return nil
	})

	if params.TradeType.IsContract() {
		group.Go(func() error {
			data, err := s.capability.GetPositions(groupCtx, params.Symbol, params.TradeType)
			if err != nil {
				return err
			}
			positions = data
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return balances, positions, nil
}

func (s *Service) recordOrder(ctx context.Context, order *model.Order) {
	if s.journal == nil || order == nil {
		return
	}
	if err := s.journal.RecordOrder(ctx, s.capability.Exchange(), order); err != nil {
		s.logger.Warn("订单流水记录失败", zap.Error(err))
	}
}

// FormatOrderParams 对数量与价格做向下截断的精度处理，返回带文本形式的新参数。
func FormatOrderParams(params *model.PlaceOrderParams, info *model.SymbolInfo) (*model.FormattedOrderParams, *model.Error) {
	qtyText, err := precision.FormatQuantity(params.Quantity, info.StepSize)
	if err != nil {
		return nil, model.WrapError(model.CodeParameter, err, "数量精度处理失败")
	}
	qty, err := strconv.ParseFloat(qtyText, 64)
	if err != nil {
		return nil, model.WrapError(model.CodeParameter, err, "格式化数量解析失败")
	}

	formatted := &model.FormattedOrderParams{
		PlaceOrderParams: *params,
		QuantityText:     qtyText,
	}
	formatted.Quantity = qty

	if params.Price > 0 {
		priceText, err := precision.FormatPrice(params.Price, info.TickSize)
		if err != nil {
			return nil, model.WrapError(model.CodeParameter, err, "价格精度处理失败")
		}
		price, err := strconv.ParseFloat(priceText, 64)
		if err != nil {
			return nil, model.WrapError(model.CodeParameter, err, "格式化价格解析失败")
		}
		formatted.PriceText = priceText
		formatted.Price = price
	}

	return formatted, nil
}

func cloneParams(params *model.PlaceOrderParams) *model.PlaceOrderParams {
	clone := *params
	return &clone
}
