package spec

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/errs"
)

// SymbolSetting 統整遊戲中的所有符號，並記錄衍生屬性（類型、賠付表等）。
//
// PayTable 以「連續軸數」為索引：第 i 欄（0-based）代表從第 1 軸起連續命中
// i+1 軸時的賠付倍數。沒有賠付的符號（Wild/Scatter/Multiplier）填全 0 列。
// Init 時展開成 PayFlat/PayIndex 以便熱路徑 O(1) 取值。
type SymbolSetting struct {
	SymbolUsedStr []string  `yaml:"symbol_used"  json:"symbol_used"`
	PayTable      [][]int64 `yaml:"pay_table"    json:"pay_table"` // 倍數以百分之一為單位（20 = 0.20x）

	SymbolUsed  []Symbol          `yaml:"-" json:"-"`
	SymbolTypes []SymbolType      `yaml:"-" json:"-"`
	SymbolCount int               `yaml:"-" json:"-"`
	PayFlat     []decimal.Decimal `yaml:"-" json:"-"`
	PayIndex    []int             `yaml:"-" json:"-"`
	PayLen      int               `yaml:"-" json:"-"`
	initFlag    bool
}

// Init 檢查設定並賦值
func (ss *SymbolSetting) Init() error {
	// 檢查初始化旗標
	if ss.initFlag {
		return nil
	}
	// 解析SymbolUsed
	if ss.SymbolUsed == nil {
		ss.SymbolUsed = make([]Symbol, len(ss.SymbolUsedStr))
		for id, str := range ss.SymbolUsedStr {
			su, ok := ParseSymbol(str)
			if !ok {
				return errs.NewFatal(fmt.Sprintf("symbol used has wrong elem %s", str))
			}
			ss.SymbolUsed[id] = su
		}
	}
	if len(ss.SymbolUsed) == 0 {
		return errs.NewFatal("symbol_used is empty")
	}
	if len(ss.SymbolUsed) != len(ss.PayTable) {
		return errs.NewFatal("len(symbol_used) != len(pay_table)")
	}

	// 展開 PayTable：config 以百分之一為單位，內部轉成 decimal 倍數
	payLen := len(ss.PayTable[0])
	if payLen == 0 {
		return errs.NewFatal("pay_table has empty row")
	}
	hundred := decimal.NewFromInt(100)
	ss.PayFlat = make([]decimal.Decimal, len(ss.SymbolUsed)*payLen)
	ss.PayIndex = make([]int, len(ss.SymbolUsed))
	write := 0
	for rowIdx, payRow := range ss.PayTable {
		if len(payRow) != payLen {
			return errs.NewFatal("inconsistent pay table lengths")
		}
		ss.PayIndex[rowIdx] = write
		for i, v := range payRow {
			if v < 0 {
				return errs.NewFatal("pay_table has negative mult")
			}
			ss.PayFlat[write+i] = decimal.NewFromInt(v).Div(hundred)
		}
		write += payLen
	}
	ss.PayLen = payLen

	// 賦值
	ss.SymbolTypes = ss.SymbolTypes[:0]
	for _, s := range ss.SymbolUsed {
		ss.SymbolTypes = append(ss.SymbolTypes, s.GetSymbolType())
	}
	ss.SymbolCount = len(ss.SymbolUsed)
	// set 初始化旗標
	ss.initFlag = true
	return nil
}

// Contains 回報符號是否屬於此遊戲的符號表（輪帶驗證用）。
func (ss *SymbolSetting) Contains(s Symbol) bool {
	for _, u := range ss.SymbolUsed {
		if u == s {
			return true
		}
	}
	return false
}

// PayMult 回傳符號 s 連續命中 cols 軸時的賠付倍數。
// cols 超出表長時取最後一欄（表尾即最高檔位）。
// 符號不在表內或 cols < 1 回傳 0。
func (ss *SymbolSetting) PayMult(s Symbol, cols int) decimal.Decimal {
	if cols < 1 {
		return decimal.Zero
	}
	for i, u := range ss.SymbolUsed {
		if u != s {
			continue
		}
		if cols > ss.PayLen {
			cols = ss.PayLen
		}
		return ss.PayFlat[ss.PayIndex[i]+cols-1]
	}
	return decimal.Zero
}

// Symbol 符號代碼。盤面、輪帶、賠付表皆以此代碼溝通；0 (Z1) 保留為空格。
type Symbol int16

const (
	// Z系列圖標(Zero) : 保留代碼，Z1 代表空格
	Z1 Symbol = iota // Z系列圖標 : Zero | Z1 保留為空格
	Z2               // Z系列圖標 : Zero | 保留代碼
	Z3               // Z系列圖標 : Zero | 保留代碼
	Z4               // Z系列圖標 : Zero | 保留代碼
	Z5               // Z系列圖標 : Zero | 保留代碼
	Z6               // Z系列圖標 : Zero | 保留代碼
	Z7               // Z系列圖標 : Zero | 保留代碼
	Z8               // Z系列圖標 : Zero | 保留代碼
	Z9               // Z系列圖標 : Zero | 保留代碼

	// M系列圖標 : Multiplier 圖標是倍數符號（自身不賠付，攜帶倍數值）
	M1 // M系列圖標 : Multiplier 圖標是倍數符號
	M2 // M系列圖標 : Multiplier 圖標是倍數符號
	M3 // M系列圖標 : Multiplier 圖標是倍數符號
	M4 // M系列圖標 : Multiplier 圖標是倍數符號
	M5 // M系列圖標 : Multiplier 圖標是倍數符號
	M6 // M系列圖標 : Multiplier 圖標是倍數符號
	M7 // M系列圖標 : Multiplier 圖標是倍數符號
	M8 // M系列圖標 : Multiplier 圖標是倍數符號
	M9 // M系列圖標 : Multiplier 圖標是倍數符號

	// C系列圖標 : Scatter 圖標是分散符號
	C1 // C系列圖標 : Scatter 圖標是分散符號
	C2 // C系列圖標 : Scatter 圖標是分散符號
	C3 // C系列圖標 : Scatter 圖標是分散符號
	C4 // C系列圖標 : Scatter 圖標是分散符號
	C5 // C系列圖標 : Scatter 圖標是分散符號
	C6 // C系列圖標 : Scatter 圖標是分散符號
	C7 // C系列圖標 : Scatter 圖標是分散符號
	C8 // C系列圖標 : Scatter 圖標是分散符號
	C9 // C系列圖標 : Scatter 圖標是分散符號

	// W系列圖標 : Wild 圖標是百搭符號
	W1 // W系列圖標 : Wild 圖標是百搭符號
	W2 // W系列圖標 : Wild 圖標是百搭符號
	W3 // W系列圖標 : Wild 圖標是百搭符號
	W4 // W系列圖標 : Wild 圖標是百搭符號
	W5 // W系列圖標 : Wild 圖標是百搭符號
	W6 // W系列圖標 : Wild 圖標是百搭符號
	W7 // W系列圖標 : Wild 圖標是百搭符號
	W8 // W系列圖標 : Wild 圖標是百搭符號
	W9 // W系列圖標 : Wild 圖標是百搭符號

	// H系列圖標 : High 圖標是高分符號
	H1 // H系列圖標 : High 圖標是高分符號
	H2 // H系列圖標 : High 圖標是高分符號
	H3 // H系列圖標 : High 圖標是高分符號
	H4 // H系列圖標 : High 圖標是高分符號
	H5 // H系列圖標 : High 圖標是高分符號
	H6 // H系列圖標 : High 圖標是高分符號
	H7 // H系列圖標 : High 圖標是高分符號
	H8 // H系列圖標 : High 圖標是高分符號
	H9 // H系列圖標 : High 圖標是高分符號

	// L系列圖標 : Low 圖標是低分符號
	L1 // L系列圖標 : Low 圖標是低分符號
	L2 // L系列圖標 : Low 圖標是低分符號
	L3 // L系列圖標 : Low 圖標是低分符號
	L4 // L系列圖標 : Low 圖標是低分符號
	L5 // L系列圖標 : Low 圖標是低分符號
	L6 // L系列圖標 : Low 圖標是低分符號
	L7 // L系列圖標 : Low 圖標是低分符號
	L8 // L系列圖標 : Low 圖標是低分符號
	L9 // L系列圖標 : Low 圖標是低分符號
)

// Empty 空格哨兵值；消除後、補落前的格子一律為 Empty。
const Empty = Z1

var symbolMap = map[string]Symbol{
	"Z1": Z1, "Z2": Z2, "Z3": Z3, "Z4": Z4, "Z5": Z5, "Z6": Z6, "Z7": Z7, "Z8": Z8, "Z9": Z9,
	"M1": M1, "M2": M2, "M3": M3, "M4": M4, "M5": M5, "M6": M6, "M7": M7, "M8": M8, "M9": M9,
	"C1": C1, "C2": C2, "C3": C3, "C4": C4, "C5": C5, "C6": C6, "C7": C7, "C8": C8, "C9": C9,
	"W1": W1, "W2": W2, "W3": W3, "W4": W4, "W5": W5, "W6": W6, "W7": W7, "W8": W8, "W9": W9,
	"H1": H1, "H2": H2, "H3": H3, "H4": H4, "H5": H5, "H6": H6, "H7": H7, "H8": H8, "H9": H9,
	"L1": L1, "L2": L2, "L3": L3, "L4": L4, "L5": L5, "L6": L6, "L7": L7, "L8": L8, "L9": L9,
}

func ParseSymbol(s string) (Symbol, bool) {
	sym, ok := symbolMap[s]
	return sym, ok
}

// IsSymbolNone 回傳符號是否屬於 None/空格 類型。
func IsSymbolNone(s Symbol) bool { return (s >= Z1) && (s <= Z9) }

// IsSymbolMultiplier 回傳符號是否屬於倍數符號。
func IsSymbolMultiplier(s Symbol) bool { return (s >= M1) && (s <= M9) }

// IsSymbolScatter 回傳符號是否屬於 Scatter 符號。
func IsSymbolScatter(s Symbol) bool { return (s >= C1) && (s <= C9) }

// IsSymbolWild 回傳符號是否屬於 Wild 符號。
func IsSymbolWild(s Symbol) bool { return (s >= W1) && (s <= W9) }

// IsSymbolHigh 回傳符號是否屬於高分符號。
func IsSymbolHigh(s Symbol) bool { return (s >= H1) && (s <= H9) }

// IsSymbolLow 回傳符號是否屬於低分符號。
func IsSymbolLow(s Symbol) bool { return (s >= L1) && (s <= L9) }

// IsSymbolPaying 回傳符號是否屬於一般賠付符號（High/Low）。
func IsSymbolPaying(s Symbol) bool { return IsSymbolHigh(s) || IsSymbolLow(s) }

type SymbolType int

const (
	SymbolTypeNone SymbolType = iota
	SymbolTypeMultiplier
	SymbolTypeScatter
	SymbolTypeWild
	SymbolTypeHigh
	SymbolTypeLow
)

// GetSymbolType 依符號類別回傳對應的 SymbolType。
func (s Symbol) GetSymbolType() SymbolType {
	switch {
	case IsSymbolNone(s):
		return SymbolTypeNone
	case IsSymbolMultiplier(s):
		return SymbolTypeMultiplier
	case IsSymbolScatter(s):
		return SymbolTypeScatter
	case IsSymbolWild(s):
		return SymbolTypeWild
	case IsSymbolHigh(s):
		return SymbolTypeHigh
	case IsSymbolLow(s):
		return SymbolTypeLow
	}
	return SymbolTypeNone
}
