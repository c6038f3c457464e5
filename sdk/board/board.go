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

// Package board 實作消除式盤面：每軸一串符號格、循環輪帶游標、
// 固定高度與 Megaways 兩種變體，以及可選的頂部水平輪帶。
//
// 盤面生命週期為一局：建立時自種子池決定每軸高度與輪帶起點，
// 之後消除/補落共用同一組每軸游標（游標延續、不重置），
// 直到該局結束整個盤面用完即棄。
package board

import (
	"github.com/zintix-labs/megalab/sdk/entropy"
	"github.com/zintix-labs/megalab/spec"
)

// RowTop 代表頂部輪帶格的列座標哨兵值。
const RowTop = -1

// Position 盤面座標：Col 為軸（自左而右），Row 為格（自底而上）。
// Row == RowTop 表示該軸被頂部輪帶覆蓋的那一格。
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Cell 一個已落地的符號實例。Mult 僅倍數符號（或免費遊戲中攜帶倍數的
// Wild）為非零。
type Cell struct {
	Sym  spec.Symbol `json:"sym"`
	Mult int         `json:"mult"`
}

// MultPolicy 倍數賦值策略（由外層注入）。
//
// 盤面只負責「哪些格子、什麼順序」：每次生成/補落後，按生成順序收集
// 具資格的格子，一次抽足種子後逐一 zip 賦值。資格判斷與種子到倍數值
// 的換算皆屬遊戲規則，由策略決定。
type MultPolicy interface {
	// Eligible 回報該符號落在該軸時是否攜帶倍數值。
	Eligible(sym spec.Symbol, col int) bool
	// Value 以種子換算倍數值。
	Value(seed int) int
}

// Board 一局的盤面。兩種變體共用同一套軸管理，只在高度來源與
// ways 計算上分歧。非併發安全。
type Board struct {
	cols    [][]Cell // 每軸自底向上
	targets []int    // 每軸目標高度
	cursors []int    // 每軸輪帶游標（下一個讀取位置，跨補落延續）
	lib     *spec.StripLibrary
	mega    bool
	top     *TopReel // nil 代表無頂部輪帶
	src     *entropy.Source
}

// Build 依設定與種子池建立一局的盤面。
//
// 種子指派順序（固定、可回放）：
//  1. Megaways 每軸高度（ReelHeight，一軸一顆）
//  2. 每軸輪帶起點（ReelStart，一軸一顆）
//  3. 頂部輪帶旋轉位置與每格符號（TopReelPos / TopReelSymbol）
//  4. 倍數格賦值（Multiplier，按生成順序 zip）
func Build(gs *spec.GameSetting, mode spec.StripMode, src *entropy.Source, pol MultPolicy) *Board {
	bs := &gs.BoardSetting
	ts := &gs.TopReelSetting

	b := &Board{
		cols:    make([][]Cell, bs.Columns),
		targets: make([]int, bs.Columns),
		cursors: make([]int, bs.Columns),
		lib:     gs.StripSetting.Get(mode),
		mega:    bs.Megaways,
		src:     src,
	}

	// 1. 決定每軸目標高度；頂輪覆蓋的軸讓出一格，讓有效高度不破表
	for c := 0; c < bs.Columns; c++ {
		min, max := bs.HeightRange(c)
		h := min
		if bs.Megaways {
			h = entropy.HeightFrom(src.Draw(entropy.ReelHeight), min, max)
		}
		if ts.Covers(c) && h >= max && h > 1 {
			h--
		}
		b.targets[c] = h
	}

	// 2. 每軸自輪帶起點連續取符號鋪滿目標高度
	newly := make([]Position, 0, bs.MaxCells)
	for c := 0; c < bs.Columns; c++ {
		strip := b.lib.Reels[c]
		b.cursors[c] = entropy.Index(src.Draw(entropy.ReelStart), len(strip))
		newly = b.fillColumn(c, newly)
	}

	// 3. 頂部輪帶
	if ts.Enabled {
		b.top = newTopReel(ts, src)
	}

	// 4. 倍數格賦值（顯式有序 zip，不靠生成過程偷偷消耗種子）
	b.assignMults(newly, pol)

	return b
}

// fillColumn 以游標自輪帶連續取符號補滿第 c 軸，回傳累加後的新格座標。
// 游標跨呼叫延續，輪帶讀到尾端時回捲。
func (b *Board) fillColumn(c int, newly []Position) []Position {
	strip := b.lib.Reels[c]
	stripLen := len(strip)
	cur := b.cursors[c]
	for len(b.cols[c]) < b.targets[c] {
		b.cols[c] = append(b.cols[c], Cell{Sym: strip[cur]})
		newly = append(newly, Position{Col: c, Row: len(b.cols[c]) - 1})
		cur++
		if cur >= stripLen {
			cur = 0
		}
	}
	b.cursors[c] = cur
	return newly
}

// assignMults 將新生成的格子中具倍數資格者，按生成順序 zip 種子賦值。
func (b *Board) assignMults(newly []Position, pol MultPolicy) {
	if pol == nil {
		return
	}
	eligible := newly[:0]
	for _, p := range newly {
		if pol.Eligible(b.cols[p.Col][p.Row].Sym, p.Col) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return
	}
	seeds := b.src.DrawMany(entropy.Multiplier, len(eligible))
	for i, p := range eligible {
		b.cols[p.Col][p.Row].Mult = pol.Value(seeds[i])
	}
}

// Columns 回傳盤面軸數。
func (b *Board) Columns() int { return len(b.cols) }

// Megaways 回報是否為變動高度變體。
func (b *Board) Megaways() bool { return b.mega }

// TopReel 回傳頂部輪帶；無頂輪時為 nil。
func (b *Board) TopReel() *TopReel { return b.top }

// Heights 回傳每軸目標高度（不含頂輪貢獻的那一格）。
func (b *Board) Heights() []int {
	out := make([]int, len(b.targets))
	copy(out, b.targets)
	return out
}

// EffectiveHeights 回傳每軸有效高度：頂輪覆蓋的軸 +1。
func (b *Board) EffectiveHeights() []int {
	out := make([]int, len(b.targets))
	for c, h := range b.targets {
		if b.top != nil && b.top.Covers(c) {
			h++
		}
		out[c] = h
	}
	return out
}

// WaysToWin 計算此盤面的 ways 數。
// 固定高度變體回傳軸數；Megaways 變體回傳各軸有效高度的乘積。
func (b *Board) WaysToWin() int {
	if !b.mega {
		return len(b.cols)
	}
	ways := 1
	for _, h := range b.EffectiveHeights() {
		ways *= h
	}
	return ways
}

// NeedsRefill 回報是否有軸低於目標高度。
func (b *Board) NeedsRefill() bool {
	for c := range b.cols {
		if len(b.cols[c]) < b.targets[c] {
			return true
		}
	}
	return false
}

// Refill 將不足的軸補滿到目標高度（游標延續），並對新格執行倍數賦值。
func (b *Board) Refill(pol MultPolicy) {
	var newly []Position
	for c := range b.cols {
		if len(b.cols[c]) < b.targets[c] {
			newly = b.fillColumn(c, newly)
		}
	}
	b.assignMults(newly, pol)
}

// RemovePositions 依座標精準移除符號（不是按符號代碼移除，
// 避免誤刪同代碼的未中獎格）。同軸自高列往低列移除以維持索引穩定；
// 頂輪格不移除，改為原地換新。
func (b *Board) RemovePositions(positions []Position) {
	// 每軸收斂出要移除的列，降冪處理
	for c := range b.cols {
		for row := len(b.cols[c]) - 1; row >= 0; row-- {
			for _, p := range positions {
				if p.Col == c && p.Row == row {
					b.cols[c] = append(b.cols[c][:row], b.cols[c][row+1:]...)
					break
				}
			}
		}
	}
	if b.top != nil {
		// 同一頂輪格可能出現在多個符號的中獎名單；一步只換一次
		replaced := map[int]bool{}
		for _, p := range positions {
			if p.Row == RowTop && !replaced[p.Col] {
				replaced[p.Col] = true
				b.top.ReplaceAt(p.Col, b.src)
			}
		}
	}
}

// MultiplierPositions 回傳盤面上所有倍數符號的座標（每步消除後無條件剝除用）。
func (b *Board) MultiplierPositions() []Position {
	var out []Position
	for c := range b.cols {
		for r := range b.cols[c] {
			if spec.IsSymbolMultiplier(b.cols[c][r].Sym) {
				out = append(out, Position{Col: c, Row: r})
			}
		}
	}
	return out
}

// SumMultipliers 加總全盤倍數符號攜帶的倍數值。
func (b *Board) SumMultipliers() int {
	sum := 0
	for c := range b.cols {
		for r := range b.cols[c] {
			if spec.IsSymbolMultiplier(b.cols[c][r].Sym) {
				sum += b.cols[c][r].Mult
			}
		}
	}
	return sum
}

// WildMultipliers 收集指定軸範圍內 Wild 攜帶的非零倍數值（免費遊戲收集規則用）。
func (b *Board) WildMultipliers(minCol, maxCol int) []int {
	var out []int
	for c := minCol; c <= maxCol && c < len(b.cols); c++ {
		if c < 0 {
			continue
		}
		for r := range b.cols[c] {
			cell := b.cols[c][r]
			if spec.IsSymbolWild(cell.Sym) && cell.Mult > 0 {
				out = append(out, cell.Mult)
			}
		}
	}
	return out
}

// CountScatters 計算全盤（含頂輪）的 Scatter 數。
func (b *Board) CountScatters() int {
	n := 0
	for c := range b.cols {
		for r := range b.cols[c] {
			if spec.IsSymbolScatter(b.cols[c][r].Sym) {
				n++
			}
		}
	}
	if b.top != nil {
		for _, s := range b.top.Snapshot() {
			if spec.IsSymbolScatter(s) {
				n++
			}
		}
	}
	return n
}

// Snapshot 回傳每軸符號代碼（自底向上）的深拷貝，供純函式求值與留存軌跡。
func (b *Board) Snapshot() [][]spec.Symbol {
	out := make([][]spec.Symbol, len(b.cols))
	for c := range b.cols {
		col := make([]spec.Symbol, len(b.cols[c]))
		for r := range b.cols[c] {
			col[r] = b.cols[c][r].Sym
		}
		out[c] = col
	}
	return out
}

// CellAt 回傳指定座標的格子（測試/觀測用）。座標越界會 panic。
func (b *Board) CellAt(p Position) Cell {
	return b.cols[p.Col][p.Row]
}
