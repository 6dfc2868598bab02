package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"unitrade/internal/model"
)

// DefaultClientIDTag 默认的客户端订单号前缀。
const DefaultClientIDTag = "ut"

// NewClientOrderID 生成抗碰撞的客户端订单号：
// 交易所标签 + 市场类型缩写 + 毫秒时间戳 + 随机后缀。
func NewClientOrderID(tag string, tradeType model.TradeType) string {
	if tag == "" {
		tag = DefaultClientIDTag
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%s%d%s", tag, tradeTypeTag(tradeType), time.Now().UnixMilli(), suffix)
}

func tradeTypeTag(t model.TradeType) string {
	switch t {
	case model.TradeTypeSpot:
		return "s"
	case model.TradeTypeLinear:
		return "l"
	case model.TradeTypeInverse:
		return "i"
	default:
		return "x"
	}
}
