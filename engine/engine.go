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

// Package engine 實作一局的解算狀態機：建盤、消除迴圈、倍數結算、
// Scatter/免費遊戲狀態轉移、封頂與結果組裝。
//
// 一局解算是同步、無共享狀態的：除了顯式傳入/傳回的免費遊戲子狀態，
// 不同 session 的併發解算之間沒有任何共用可變資料。
package engine

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/sdk/board"
	"github.com/zintix-labs/megalab/sdk/entropy"
	"github.com/zintix-labs/megalab/sdk/ways"
	"github.com/zintix-labs/megalab/spec"
)

// Mode 一局所處的遊戲狀態。
// BuyEntry 的賠付規則與 BaseGame 完全相同，只是入場多收購買費。
type Mode int

const (
	ModeBase Mode = iota
	ModeBuy
	ModeFree
)

var modeNames = [...]string{"base_game", "buy_entry", "free_spins"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// BetMode 投注模式。Ante 換用專屬輪帶庫與倍數權重表。
type BetMode int

const (
	BetStandard BetMode = iota
	BetAnte
)

// FreeSpinState 免費遊戲子狀態，跨局透傳。
//
// 生命週期：base/buy 局的 Scatter 結算首次送出免費局時建立；
// 每個免費局遞減剩餘局數並於首局後清掉 JustTriggered；再觸發時延長；
// 剩餘局數歸零或封頂命中時銷毀（歸 nil）。
type FreeSpinState struct {
	SpinsRemaining int             `json:"spins_remaining"`
	TotalAwarded   int             `json:"total_awarded"`
	TotalMult      decimal.Decimal `json:"total_mult"`
	FeatureWin     decimal.Decimal `json:"feature_win"`
	JustTriggered  bool            `json:"just_triggered"`
}

// Clone 深拷貝（回應組裝時避免與內部狀態共用）。
func (fs *FreeSpinState) Clone() *FreeSpinState {
	if fs == nil {
		return nil
	}
	c := *fs
	return &c
}

// Request 一局解算的輸入。呼叫端（machine/dto 層）已完成請求驗證。
type Request struct {
	BaseBet    decimal.Decimal
	TotalBet   decimal.Decimal
	BetMode    BetMode
	FeatureBuy bool
	Free       *FreeSpinState // 既有免費遊戲狀態，nil 代表無
}

// CascadeStep 一次消除迭代的軌跡，記錄後不再改動。
// Before/After 皆為深拷貝快照，與盤面本體不共用記憶體。
type CascadeStep struct {
	Index     int              `json:"index"`
	Before    [][]spec.Symbol  `json:"before"`
	After     [][]spec.Symbol  `json:"after"`
	TopBefore []spec.Symbol    `json:"top_before,omitempty"`
	TopAfter  []spec.Symbol    `json:"top_after,omitempty"`
	Wins      []ways.SymbolWin `json:"wins"`
	BaseWin   decimal.Decimal  `json:"base_win"`
	Mult      decimal.Decimal  `json:"mult"`
	StepWin   decimal.Decimal  `json:"step_win"`
}

// ScatterOutcome 一局的 Scatter 結算結果。
type ScatterOutcome struct {
	Count        int             `json:"count"`
	Win          decimal.Decimal `json:"win"`
	SpinsAwarded int             `json:"spins_awarded"`
	Retriggered  bool            `json:"retriggered"`
}

// RoundResult 一局解算的完整輸出。
type RoundResult struct {
	Mode             Mode             `json:"mode"`
	TotalWin         decimal.Decimal  `json:"total_win"`
	ScatterWin       decimal.Decimal  `json:"scatter_win"`
	FeatureWin       decimal.Decimal  `json:"feature_win"`
	BuyCost          decimal.Decimal  `json:"buy_cost"`
	FreeSpinsAwarded int              `json:"free_spins_awarded"`
	Steps            []CascadeStep    `json:"steps"`
	Wins             []ways.SymbolWin `json:"wins"`
	Scatter          *ScatterOutcome  `json:"scatter,omitempty"`
	NextFree         *FreeSpinState   `json:"next_free,omitempty"`
	FinalCols        [][]spec.Symbol  `json:"final_cols"`
	ReelHeights      []int            `json:"reel_heights,omitempty"`
	TopSymbols       []spec.Symbol    `json:"top_symbols,omitempty"`
	WaysToWin        int              `json:"ways_to_win,omitempty"`
	MaxWinHit        bool             `json:"max_win_hit"`
}

// multPolicy 倍數賦值策略：依模式選權重表，以種子換算倍數值。
//
// 資格規則：倍數符號永遠攜帶值；免費遊戲中 Wild 也攜帶值
// （收集範圍由 WildCollectSetting 決定，在結算時才過濾軸範圍）。
type multPolicy struct {
	ms      *spec.MultSetting
	kind    spec.MultProfileKind
	running *int // 免費遊戲累積倍數（高低檔權重表切換依據）
	free    bool
}

func (p *multPolicy) Eligible(sym spec.Symbol, col int) bool {
	if spec.IsSymbolMultiplier(sym) {
		return true
	}
	return p.free && spec.IsSymbolWild(sym)
}

func (p *multPolicy) Value(seed int) int {
	running := 0
	if p.running != nil {
		running = *p.running
	}
	return p.ms.Profile(p.kind, running).ValueBySeed(seed)
}

// PoolSpecs 推估一局所需的各用途種子量，作為向外部種子池的一次性請求。
// 量是上界估計：消除補落會追加消耗，不足的部分由本地 PRNG 吸收。
func PoolSpecs(gs *spec.GameSetting) []entropy.PoolSpec {
	cols := gs.BoardSetting.Columns
	specs := []entropy.PoolSpec{
		{Purpose: entropy.ReelStart, Count: cols},
		{Purpose: entropy.Multiplier, Count: gs.BoardSetting.MaxCells},
	}
	if gs.BoardSetting.Megaways {
		specs = append(specs, entropy.PoolSpec{Purpose: entropy.ReelHeight, Count: cols})
	}
	if gs.TopReelSetting.Enabled {
		specs = append(specs,
			entropy.PoolSpec{Purpose: entropy.TopReelPos, Count: 1},
			entropy.PoolSpec{Purpose: entropy.TopReelSymbol, Count: gs.TopReelSetting.VisibleCount() * 4},
		)
	}
	return specs
}

// snapshotTop 頂輪對齊快照；無頂輪回傳 nil。
func snapshotTop(b *board.Board) []spec.Symbol {
	if t := b.TopReel(); t != nil {
		return t.AlignedSnapshot()
	}
	return nil
}
