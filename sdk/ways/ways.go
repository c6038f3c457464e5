// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ways 實作變動高度盤面的 ways 中獎判定。
//
// 純函式：輸入盤面快照與賠付表，輸出各符號的中獎明細與總賠付；
// 不持有、也不改動任何盤面狀態，同一份快照重複求值結果必然相同。
package ways

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/sdk/board"
	"github.com/zintix-labs/megalab/spec"
)

// Input 一次求值的盤面快照。
//
// Cols 為每軸符號（自底向上）；Top 為頂部輪帶「按覆蓋軸由左至右」
// 對齊的符號序列（無頂輪時為 nil），TopMin 為第一個被覆蓋的軸。
type Input struct {
	Cols   [][]spec.Symbol
	Top    []spec.Symbol
	TopMin int
}

// topSymbolAt 回傳第 col 軸的頂輪符號；該軸未被覆蓋回傳 (Empty,false)。
func (in *Input) topSymbolAt(col int) (spec.Symbol, bool) {
	if in.Top == nil {
		return spec.Empty, false
	}
	i := col - in.TopMin
	if i < 0 || i >= len(in.Top) {
		return spec.Empty, false
	}
	return in.Top[i], true
}

// SymbolWin 單一符號的中獎明細。
type SymbolWin struct {
	Sym       spec.Symbol      `json:"sym"`
	Count     int              `json:"count"` // 參與命中的符號總顆數（含 Wild 替代）
	Ways      int              `json:"ways"`  // 各軸命中數之乘積
	Cols      int              `json:"cols"`  // 自第 1 軸起的連續命中軸數
	Payout    decimal.Decimal  `json:"payout"`
	Positions []board.Position `json:"positions"`
}

// Evaluate 對盤面快照做一次完整的 ways 求值。
//
// 規則（每個賠付符號獨立判定）：
//  1. 第 1 軸必須出現目標符號本尊——Wild 不會出現在第 1 軸，
//     也不在第 1 軸代打；第 1 軸無本尊直接出局。
//  2. 自左而右逐軸累計「本尊 + Wild 代打」的命中數（頂輪覆蓋的軸
//     連頂輪那一格一起算）；遇到命中數為 0 的軸即停（必須連續）。
//  3. 連續命中軸數不足 2 不成立。
//  4. ways = 各軸命中數乘積；賠付檔位以「連續軸數」查表。
//  5. 賠付 = bet × 檔位倍數 × ways，無條件捨去到兩位小數並封頂。
//
// Scatter 不參與 ways 也不可被 Wild 代打，由 CountScatters 另行結算。
func Evaluate(in Input, ss *spec.SymbolSetting, bet decimal.Decimal) ([]SymbolWin, decimal.Decimal) {
	var wins []SymbolWin
	total := decimal.Zero

	for i, sym := range ss.SymbolUsed {
		st := ss.SymbolTypes[i]
		if st != spec.SymbolTypeHigh && st != spec.SymbolTypeLow {
			continue
		}
		if w, ok := evalSymbol(in, ss, sym, bet); ok {
			wins = append(wins, w)
			total = total.Add(w.Payout)
		}
	}
	return wins, spec.TruncMoney(total)
}

// evalSymbol 對單一目標符號走一次自左而右的連續命中掃描。
func evalSymbol(in Input, ss *spec.SymbolSetting, target spec.Symbol, bet decimal.Decimal) (SymbolWin, bool) {
	cols := len(in.Cols)
	if cols == 0 {
		return SymbolWin{}, false
	}

	w := SymbolWin{Sym: target}
	ways := 1

	for c := 0; c < cols; c++ {
		hit := 0
		for r, s := range in.Cols[c] {
			if s == target || (c > 0 && spec.IsSymbolWild(s)) {
				hit++
				w.Positions = append(w.Positions, board.Position{Col: c, Row: r})
			}
		}
		if ts, ok := in.topSymbolAt(c); ok {
			if ts == target || (c > 0 && spec.IsSymbolWild(ts)) {
				hit++
				w.Positions = append(w.Positions, board.Position{Col: c, Row: board.RowTop})
			}
		}
		if hit == 0 {
			break
		}
		ways *= hit
		w.Count += hit
		w.Cols++
	}

	if w.Cols < 2 {
		return SymbolWin{}, false
	}
	tier := ss.PayMult(target, w.Cols)
	if tier.IsZero() {
		return SymbolWin{}, false
	}
	w.Ways = ways
	w.Payout = spec.TruncMoney(bet.Mul(tier).Mul(decimal.NewFromInt(int64(ways))))
	return w, true
}

// CountScatters 計算快照中（含頂輪）的 Scatter 總數。
func CountScatters(in Input) int {
	n := 0
	for _, col := range in.Cols {
		for _, s := range col {
			if spec.IsSymbolScatter(s) {
				n++
			}
		}
	}
	for _, s := range in.Top {
		if spec.IsSymbolScatter(s) {
			n++
		}
	}
	return n
}
