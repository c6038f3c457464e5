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

package board

import (
	"fmt"

	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/sdk/entropy"
	"github.com/zintix-labs/megalab/spec"
)

// TopReel 頂部水平輪帶：固定格數的環形符號緩衝加一個旋轉位置。
//
// 被覆蓋的軸在「頂排」的有效符號由旋轉位置自右而左推算：
//
//	slot = (rotation + (maxCovered - col)) mod visible
//
// 中獎的頂輪格不落下遞補，而是原地換上一顆新抽的輪帶符號。
type TopReel struct {
	slots      []spec.Symbol
	rotation   int
	minCovered int
	maxCovered int
	strip      []spec.Symbol
}

func newTopReel(ts *spec.TopReelSetting, src *entropy.Source) *TopReel {
	visible := ts.VisibleCount()
	t := &TopReel{
		slots:      make([]spec.Symbol, visible),
		rotation:   entropy.Index(src.Draw(entropy.TopReelPos), visible),
		minCovered: ts.MinCovered,
		maxCovered: ts.MaxCovered,
		strip:      ts.Strip,
	}
	for i := range t.slots {
		t.slots[i] = t.draw(src)
	}
	return t
}

func (t *TopReel) draw(src *entropy.Source) spec.Symbol {
	return t.strip[entropy.Index(src.Draw(entropy.TopReelSymbol), len(t.strip))]
}

// Covers 回報第 col 軸是否在覆蓋範圍內。
func (t *TopReel) Covers(col int) bool {
	return col >= t.minCovered && col <= t.maxCovered
}

// slotFor 轉換軸座標到環形緩衝格位。
func (t *TopReel) slotFor(col int) int {
	return (t.rotation + (t.maxCovered - col)) % len(t.slots)
}

// SymbolFor 回傳第 col 軸在頂排的有效符號。
// col 不在覆蓋範圍內屬呼叫端錯誤，回傳領域錯誤。
func (t *TopReel) SymbolFor(col int) (spec.Symbol, error) {
	if !t.Covers(col) {
		return spec.Empty, errs.Warnf("top reel does not cover column %d", col)
	}
	return t.slots[t.slotFor(col)], nil
}

// ReplaceAt 將第 col 軸對應的頂輪格原地換成新抽的輪帶符號。
// 不覆蓋的軸為 no-op（消除流程只會對覆蓋軸呼叫）。
func (t *TopReel) ReplaceAt(col int, src *entropy.Source) {
	if !t.Covers(col) {
		return
	}
	t.slots[t.slotFor(col)] = t.draw(src)
}

// Rotation 回傳旋轉位置（觀測/回放用）。
func (t *TopReel) Rotation() int { return t.rotation }

// Snapshot 回傳可見格符號（格位順序）的拷貝。
func (t *TopReel) Snapshot() []spec.Symbol {
	out := make([]spec.Symbol, len(t.slots))
	copy(out, t.slots)
	return out
}

// AlignedSnapshot 回傳按「覆蓋軸由左至右」對齊的符號序列，
// 供求值器與回應組裝使用。
func (t *TopReel) AlignedSnapshot() []spec.Symbol {
	out := make([]spec.Symbol, 0, len(t.slots))
	for col := t.minCovered; col <= t.maxCovered; col++ {
		out = append(out, t.slots[t.slotFor(col)])
	}
	return out
}

// CoveredRange 回傳覆蓋範圍 [min,max]。
func (t *TopReel) CoveredRange() (int, int) { return t.minCovered, t.maxCovered }

func (t *TopReel) String() string {
	return fmt.Sprintf("topreel{rot=%d cover=[%d,%d] slots=%v}", t.rotation, t.minCovered, t.maxCovered, t.slots)
}
