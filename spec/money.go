package spec

import "github.com/shopspring/decimal"

// MaxMoney 幣值可表示上限。任何賠付運算超過此值一律截斷到上限，
// 這是封頂（clamp）而不是錯誤。
var MaxMoney = decimal.New(999_999_999_999_999, -2) // 9,999,999,999,999.99

// TruncMoney 將金額無條件捨去到兩位小數，並截斷到幣值上限。
func TruncMoney(d decimal.Decimal) decimal.Decimal {
	d = d.Truncate(2)
	if d.GreaterThan(MaxMoney) {
		return MaxMoney
	}
	return d
}
