// Package precision 提供纯函数的数量/价格精度处理。
// 所有派生数量一律向下截断而非四舍五入，避免超出钱包余额。
package precision

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DecimalPlaces 从步长的文本表示推导小数位数。
// 以文本而非浮点数推导，避免二进制表示带来的伪小数位。
func DecimalPlaces(step string) int {
	step = strings.TrimSpace(step)
	idx := strings.IndexByte(step, '.')
	if idx < 0 {
		return 0
	}
	frac := strings.TrimRight(step[idx+1:], "0")
	return len(frac)
}

// FormatQuantity 将数量向下截断到步长的整数倍，
// 并按步长自身的小数位数渲染。输出恒不大于输入。
func FormatQuantity(value float64, stepSize string) (string, error) {
	return floorToStep(value, stepSize, "步长")
}

// FormatPrice 将价格向下截断到最小报价单位的整数倍。
func FormatPrice(value float64, tickSize string) (string, error) {
	return floorToStep(value, tickSize, "最小报价单位")
}

// FloorToStep 返回截断后的数值本身，供需要继续参与计算的场景使用。
func FloorToStep(value float64, step string) (float64, error) {
	text, err := floorToStep(value, step, "步长")
	if err != nil {
		return 0, err
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func floorToStep(value float64, step string, what string) (string, error) {
	stepDec, err := decimal.NewFromString(strings.TrimSpace(step))
	if err != nil {
		return "", fmt.Errorf("precision: 解析%s %q 失败: %w", what, step, err)
	}
	if stepDec.Sign() <= 0 {
		return "", fmt.Errorf("precision: %s必须为正: %q", what, step)
	}

	valueDec := decimal.NewFromFloat(value)
	// floor(value/step)*step，保证结果是步长的整数倍且不大于输入。
	floored := valueDec.Div(stepDec).Floor().Mul(stepDec)

	places := DecimalPlaces(step)
	return floored.StringFixed(int32(places)), nil
}
