package symbol

import (
	"sort"
	"strings"

	"unitrade/internal/model"
)

// QuarterKind 指定季度合约选择。
type QuarterKind string

const (
	// QuarterCurrent 当季合约。
	QuarterCurrent QuarterKind = "current_quarter"
	// QuarterNext 次季合约。
	QuarterNext QuarterKind = "next_quarter"
)

type datedContract struct {
	raw  string
	date string // YYMMDD
}

// ResolveQuarterContract 在共享同一基础货币的反向交割合约中选取季度合约。
// candidates 来自实时合约列表（结算日期会滚动，不能写死）：
// 排除永续后按内嵌结算日期升序排序，当季取第一个，次季取第二个；
// 没有任何带日期的合约时回退到永续符号。
func ResolveQuarterContract(base string, candidates []string, which QuarterKind) (string, error) {
	if base == "" {
		return "", model.NewError(model.CodeParameter, "基础货币不能为空")
	}

	perpetual := ""
	dated := make([]datedContract, 0, len(candidates))
	for _, raw := range candidates {
		upper := strings.ToUpper(strings.TrimSpace(raw))
		if upper == "" || !strings.HasPrefix(upper, strings.ToUpper(base)) {
			continue
		}
		if date, ok := settlementDate(upper); ok {
			dated = append(dated, datedContract{raw: upper, date: date})
			continue
		}
		if perpetual == "" {
			perpetual = upper
		}
	}

	if len(dated) == 0 {
		if perpetual == "" {
			return "", model.NewError(model.CodeSymbolUnavailable, "基础货币 %s 没有可用的交割或永续合约", base)
		}
		return perpetual, nil
	}

	sort.Slice(dated, func(i, j int) bool {
		return dated[i].date < dated[j].date
	})

	switch which {
	case QuarterCurrent:
		return dated[0].raw, nil
	case QuarterNext:
		if len(dated) < 2 {
			// 只有一个在市交割合约时次季与当季相同。
			return dated[0].raw, nil
		}
		return dated[1].raw, nil
	default:
		return "", model.NewError(model.CodeParameter, "未知季度合约类型: %q", which)
	}
}

// settlementDate 从原始符号中提取内嵌的 YYMMDD 结算日期。
// 支持 BTCUSD_240329 与 BTC-USD-240329 两种形式。
func settlementDate(raw string) (string, bool) {
	seg := raw
	if idx := strings.LastIndexAny(raw, "_-"); idx >= 0 {
		seg = raw[idx+1:]
	}
	if len(seg) != 6 {
		return "", false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return "", false
		}
	}
	return seg, true
}
