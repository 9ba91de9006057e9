// Package model 提供各领域共享的值类型。
package model

import "github.com/shopspring/decimal"

// Money 金额统一保留两位小数
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
