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

package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/sdk/core"
	"github.com/zintix-labs/megalab/sdk/entropy"
	"github.com/zintix-labs/megalab/spec"
)

// testSetting 組一份 3x3 固定盤面遊戲：
// 第 2 軸帶一顆 Wild；鋪滿首盤後每軸的補落段全是 Scatter，
// 所以任何一局都恰好消一步就收斂、終盤必為 9 顆 Scatter。
func testSetting(t *testing.T, maxWinMult int, wilds bool) *spec.GameSetting {
	t.Helper()

	col1 := []spec.Symbol{spec.H1, spec.L1, spec.L1, spec.C1, spec.C1, spec.C1}
	if wilds {
		col1 = []spec.Symbol{spec.W1, spec.L1, spec.L1, spec.C1, spec.C1, spec.C1}
	}
	col2 := []spec.Symbol{spec.L1, spec.L1, spec.L1, spec.C1, spec.C1, spec.C1}
	if !wilds {
		col2 = []spec.Symbol{spec.L1, spec.M1, spec.L1, spec.C1, spec.C1, spec.C1}
	}

	gs := &spec.GameSetting{
		GameName:    "engine-test",
		GameID:      9901,
		BetUnits:    []int{100},
		MaxWinMult:  maxWinMult,
		BuyCostMult: 100,
		SymbolSetting: spec.SymbolSetting{
			SymbolUsedStr: []string{"W1", "C1", "M1", "H1", "L1"},
			PayTable: [][]int64{
				{0, 0, 0},
				{0, 0, 0},
				{0, 0, 0},
				{0, 100, 500},
				{0, 50, 100},
			},
		},
		BoardSetting: spec.BoardSetting{Columns: 3, Rows: 3},
		StripSetting: spec.StripSetting{
			Libraries: []spec.StripLibrary{{
				ModeStr: "StripBase",
				Reels: [][]spec.Symbol{
					{spec.H1, spec.L1, spec.L1, spec.C1, spec.C1, spec.C1},
					col1,
					col2,
				},
			}},
		},
		MultSetting: spec.MultSetting{
			Standard:          spec.MultProfile{Values: []int{2}, Weights: []int{1}},
			Ante:              spec.MultProfile{Values: []int{2}, Weights: []int{1}},
			FreeLow:           spec.MultProfile{Values: []int{3}, Weights: []int{1}},
			FreeHigh:          spec.MultProfile{Values: []int{2}, Weights: []int{1}},
			FreeHighThreshold: 100,
			WildCollect:       spec.WildCollectSetting{Enabled: wilds, MinCol: 0, MaxCol: 2},
		},
		ScatterSetting: spec.ScatterSetting{
			Tiers: []spec.ScatterTier{
				{Count: 3, Spins: 6, PayMult: 200},
				{Count: 5, Spins: 10, PayMult: 500},
			},
			RetriggerCount: 3,
			RetriggerSpins: 4,
		},
	}

	if err := gs.SymbolSetting.Init(); err != nil {
		t.Fatalf("symbol init: %v", err)
	}
	if err := gs.BoardSetting.Init(); err != nil {
		t.Fatalf("board init: %v", err)
	}
	if err := gs.StripSetting.Init(&gs.SymbolSetting, &gs.BoardSetting); err != nil {
		t.Fatalf("strip init: %v", err)
	}
	if err := gs.TopReelSetting.Init(&gs.SymbolSetting, &gs.BoardSetting); err != nil {
		t.Fatalf("top reel init: %v", err)
	}
	if err := gs.MultSetting.Init(&gs.BoardSetting); err != nil {
		t.Fatalf("mult init: %v", err)
	}
	if err := gs.ScatterSetting.Init(); err != nil {
		t.Fatalf("scatter init: %v", err)
	}
	return gs
}

func testSource() *entropy.Source {
	src := entropy.NewSource(core.New(core.Default().New(5)))
	src.Load(entropy.ReelStart, []int{0, 0, 0})
	src.Load(entropy.Multiplier, []int{0, 0, 0})
	return src
}

func one() decimal.Decimal { return decimal.NewFromInt(1) }

func baseRequest() *Request {
	return &Request{BaseBet: one(), TotalBet: one(), BetMode: BetStandard}
}

func TestResolveRoundBase(t *testing.T) {
	gs := testSetting(t, 1000, true)
	res, err := ResolveRound(gs, testSource(), baseRequest())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// H1 兩軸 1 way = 1.00；L1 三軸 2x3x3 = 18 ways = 18.00；
	// 終盤 9 顆 Scatter → 最高檔 5.00，合計 24.00
	if !res.TotalWin.Equal(decimal.RequireFromString("24.00")) {
		t.Fatalf("total win expected 24.00, got %s", res.TotalWin)
	}
	if !res.ScatterWin.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("scatter win expected 5.00, got %s", res.ScatterWin)
	}
	if len(res.Steps) != 1 {
		t.Fatalf("expected exactly 1 cascade step, got %d", len(res.Steps))
	}
	if !res.Steps[0].Mult.Equal(one()) {
		t.Fatalf("base step mult expected 1, got %s", res.Steps[0].Mult)
	}
	if res.Scatter == nil || res.Scatter.Count != 9 || res.Scatter.SpinsAwarded != 10 {
		t.Fatalf("scatter outcome mismatch: %+v", res.Scatter)
	}
	// 獎勵自下一局生效，本局以 free_spins 模式回報
	if res.Mode != ModeFree || res.FreeSpinsAwarded != 10 {
		t.Fatalf("trigger reporting mismatch: %v / %d", res.Mode, res.FreeSpinsAwarded)
	}
	nf := res.NextFree
	if nf == nil || nf.SpinsRemaining != 10 || nf.TotalAwarded != 10 || !nf.JustTriggered {
		t.Fatalf("next free mismatch: %+v", nf)
	}
	if res.MaxWinHit {
		t.Fatalf("unexpected max win hit")
	}
	// 固定高度不回報每軸高度
	if res.ReelHeights != nil || res.WaysToWin != 0 {
		t.Fatalf("fixed board must not report heights/ways")
	}
	for c, col := range res.FinalCols {
		for r, s := range col {
			if !spec.IsSymbolScatter(s) {
				t.Fatalf("final board (%d,%d) expected scatter, got %v", c, r, s)
			}
		}
	}
}

func TestResolveRoundMultiplier(t *testing.T) {
	gs := testSetting(t, 1000, false)
	res, err := ResolveRound(gs, testSource(), baseRequest())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// H1 兩軸 1.00 + L1 三軸 2x2x2=8.00 → 9.00，全盤倍數 2 → 18.00，加 Scatter 5.00
	if !res.Steps[0].Mult.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("step mult expected 2, got %s", res.Steps[0].Mult)
	}
	if !res.TotalWin.Equal(decimal.RequireFromString("23.00")) {
		t.Fatalf("total win expected 23.00, got %s", res.TotalWin)
	}
}

func TestResolveRoundFreeAccumulates(t *testing.T) {
	gs := testSetting(t, 1000, true)
	req := baseRequest()
	req.Free = &FreeSpinState{
		SpinsRemaining: 3,
		TotalAwarded:   3,
		TotalMult:      decimal.Zero,
		FeatureWin:     decimal.Zero,
	}
	res, err := ResolveRound(gs, testSource(), req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// 免費局 Wild 攜帶倍數 3（free_low 權重表），收集後累積倍數 3：
	// 基礎 19.00 x 3 = 57.00，加 Scatter 5.00 → 62.00
	if !res.TotalWin.Equal(decimal.RequireFromString("62.00")) {
		t.Fatalf("total win expected 62.00, got %s", res.TotalWin)
	}
	if !res.FeatureWin.Equal(decimal.RequireFromString("57.00")) {
		t.Fatalf("feature win expected 57.00, got %s", res.FeatureWin)
	}
	if res.Scatter == nil || !res.Scatter.Retriggered || res.Scatter.SpinsAwarded != 4 {
		t.Fatalf("retrigger mismatch: %+v", res.Scatter)
	}

	nf := res.NextFree
	if nf == nil {
		t.Fatalf("free chain must continue")
	}
	// 3 - 本局 1 + 再觸發 4 = 6
	if nf.SpinsRemaining != 6 || nf.TotalAwarded != 7 {
		t.Fatalf("spins remaining mismatch: %+v", nf)
	}
	if !nf.TotalMult.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("accumulated mult expected 3, got %s", nf.TotalMult)
	}
	if nf.JustTriggered {
		t.Fatalf("just_triggered must clear after first free spin")
	}
}

func TestResolveRoundMaxWinClamp(t *testing.T) {
	gs := testSetting(t, 20, true)
	res, err := ResolveRound(gs, testSource(), baseRequest())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.TotalWin.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected clamp to 20.00, got %s", res.TotalWin)
	}
	if !res.MaxWinHit {
		t.Fatalf("max win hit must be set")
	}
	// 封頂砍到贏分時，剛觸發的免費遊戲一併終結
	if res.NextFree != nil {
		t.Fatalf("clamp must destroy pending free spins")
	}
}

func TestResolveRoundBuy(t *testing.T) {
	gs := testSetting(t, 1000, true)
	req := baseRequest()
	req.FeatureBuy = true
	res, err := ResolveRound(gs, testSource(), req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.BuyCost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("buy cost expected 100.00, got %s", res.BuyCost)
	}
}

func TestValidate(t *testing.T) {
	gs := testSetting(t, 1000, true)

	if _, err := ResolveRound(gs, testSource(), nil); err == nil {
		t.Fatalf("nil request must be rejected")
	}
	if _, err := ResolveRound(gs, testSource(), &Request{}); err == nil {
		t.Fatalf("zero bet must be rejected")
	}

	buyDuringFree := baseRequest()
	buyDuringFree.FeatureBuy = true
	buyDuringFree.Free = &FreeSpinState{SpinsRemaining: 2}
	if _, err := ResolveRound(gs, testSource(), buyDuringFree); err == nil {
		t.Fatalf("buy during free spins must be rejected")
	}

	noBuy := testSetting(t, 1000, false)
	noBuy.BuyCostMult = 0
	buyReq := baseRequest()
	buyReq.FeatureBuy = true
	if _, err := ResolveRound(noBuy, testSource(), buyReq); err == nil {
		t.Fatalf("buy on non-buyable game must be rejected")
	}
}

func TestClassify(t *testing.T) {
	gs := testSetting(t, 1000, true)

	mode, strip, kind := classify(gs, baseRequest(), nil)
	if mode != ModeBase || strip != spec.StripBase || kind != spec.MultStandard {
		t.Fatalf("standard classify mismatch: %v %v %v", mode, strip, kind)
	}

	ante := baseRequest()
	ante.BetMode = BetAnte
	mode, strip, kind = classify(gs, ante, nil)
	if mode != ModeBase || strip != spec.StripAnte || kind != spec.MultAnte {
		t.Fatalf("ante classify mismatch: %v %v %v", mode, strip, kind)
	}

	buy := baseRequest()
	buy.FeatureBuy = true
	mode, strip, _ = classify(gs, buy, nil)
	if mode != ModeBuy || strip != spec.StripBuy {
		t.Fatalf("buy classify mismatch: %v %v", mode, strip)
	}

	// 免費狀態優先於一切
	free := &FreeSpinState{SpinsRemaining: 1}
	mode, strip, kind = classify(gs, buy, free)
	if mode != ModeFree || strip != spec.StripFree || kind != spec.MultFreeLow {
		t.Fatalf("free classify mismatch: %v %v %v", mode, strip, kind)
	}
}

func TestFreeSpinStateClone(t *testing.T) {
	var nilState *FreeSpinState
	if nilState.Clone() != nil {
		t.Fatalf("nil clone must stay nil")
	}
	fs := &FreeSpinState{SpinsRemaining: 4, TotalMult: decimal.NewFromInt(2)}
	c := fs.Clone()
	c.SpinsRemaining = 1
	if fs.SpinsRemaining != 4 {
		t.Fatalf("clone must not share state")
	}
}

func TestPoolSpecs(t *testing.T) {
	gs := testSetting(t, 1000, true)
	specs := PoolSpecs(gs)
	if len(specs) != 2 {
		t.Fatalf("fixed board expected 2 pools, got %d", len(specs))
	}
	if specs[0].Purpose != entropy.ReelStart || specs[0].Count != 3 {
		t.Fatalf("reel start spec mismatch: %+v", specs[0])
	}
	if specs[1].Purpose != entropy.Multiplier || specs[1].Count != 9 {
		t.Fatalf("multiplier spec mismatch: %+v", specs[1])
	}

	mega := testSetting(t, 1000, true)
	mega.BoardSetting = spec.BoardSetting{
		Columns: 3, Megaways: true,
		MinRows: []int{2, 2, 2}, MaxRows: []int{5, 5, 5},
	}
	if err := mega.BoardSetting.Init(); err != nil {
		t.Fatalf("mega board init: %v", err)
	}
	mega.TopReelSetting = spec.TopReelSetting{
		Enabled:     true,
		CoveredCols: []int{1, 2},
		Strip:       []spec.Symbol{spec.H1, spec.L1},
	}
	if err := mega.TopReelSetting.Init(&mega.SymbolSetting, &mega.BoardSetting); err != nil {
		t.Fatalf("top reel init: %v", err)
	}
	specs = PoolSpecs(mega)
	if len(specs) != 5 {
		t.Fatalf("megaways+top reel expected 5 pools, got %d", len(specs))
	}

	var purposes []entropy.Purpose
	for _, s := range specs {
		purposes = append(purposes, s.Purpose)
	}
	want := []entropy.Purpose{entropy.ReelStart, entropy.Multiplier, entropy.ReelHeight, entropy.TopReelPos, entropy.TopReelSymbol}
	for i, p := range want {
		if purposes[i] != p {
			t.Fatalf("pool order mismatch at %d: %v", i, purposes)
		}
	}
}

func TestRoundIDUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 64; i++ {
		id := NewRoundID()
		if id == "" {
			t.Fatalf("empty round id")
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate round id %s", id)
		}
		seen[id] = struct{}{}
	}
}

// cascadeSetting 組一份會連續消兩步的免費遊戲盤面：
// 首盤 H1 三軸連線帶一顆 M1（倍數 2），補落後再次 H1 連線帶
// 第二顆 M1（倍數 3），第三盤全是零賠付符號即收斂。
func cascadeSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs := &spec.GameSetting{
		GameName:    "engine-cascade-test",
		GameID:      9902,
		BetUnits:    []int{100},
		MaxWinMult:  1000,
		BuyCostMult: 100,
		SymbolSetting: spec.SymbolSetting{
			SymbolUsedStr: []string{"M1", "H1", "L2"},
			PayTable: [][]int64{
				{0, 0, 0},
				{0, 100, 500},
				{0, 0, 0},
			},
		},
		BoardSetting: spec.BoardSetting{Columns: 3, Rows: 3},
		StripSetting: spec.StripSetting{
			Libraries: []spec.StripLibrary{{
				ModeStr: "StripBase",
				Reels: [][]spec.Symbol{
					{spec.H1, spec.L2, spec.L2, spec.H1, spec.L2, spec.L2, spec.L2},
					{spec.H1, spec.M1, spec.L2, spec.H1, spec.M1, spec.L2, spec.L2},
					{spec.L2, spec.H1, spec.L2, spec.H1, spec.L2, spec.L2, spec.L2},
				},
			}},
		},
		MultSetting: spec.MultSetting{
			Standard:          spec.MultProfile{Values: []int{1}, Weights: []int{1}},
			Ante:              spec.MultProfile{Values: []int{1}, Weights: []int{1}},
			FreeLow:           spec.MultProfile{Values: []int{2, 3}, Weights: []int{1, 1}},
			FreeHigh:          spec.MultProfile{Values: []int{2}, Weights: []int{1}},
			FreeHighThreshold: 100,
		},
		ScatterSetting: spec.ScatterSetting{
			Tiers:          []spec.ScatterTier{{Count: 3, Spins: 6, PayMult: 200}},
			RetriggerCount: 3,
			RetriggerSpins: 4,
		},
	}
	if err := gs.SymbolSetting.Init(); err != nil {
		t.Fatalf("symbol init: %v", err)
	}
	if err := gs.BoardSetting.Init(); err != nil {
		t.Fatalf("board init: %v", err)
	}
	if err := gs.StripSetting.Init(&gs.SymbolSetting, &gs.BoardSetting); err != nil {
		t.Fatalf("strip init: %v", err)
	}
	if err := gs.TopReelSetting.Init(&gs.SymbolSetting, &gs.BoardSetting); err != nil {
		t.Fatalf("top reel init: %v", err)
	}
	if err := gs.MultSetting.Init(&gs.BoardSetting); err != nil {
		t.Fatalf("mult init: %v", err)
	}
	if err := gs.ScatterSetting.Init(); err != nil {
		t.Fatalf("scatter init: %v", err)
	}
	return gs
}

func TestResolveRoundMultiplierAcrossCascades(t *testing.T) {
	gs := cascadeSetting(t)
	src := entropy.NewSource(core.New(core.Default().New(5)))
	src.Load(entropy.ReelStart, []int{0, 0, 0})
	// 第一顆 M1 抽到 2，補落的第二顆抽到 3
	src.Load(entropy.Multiplier, []int{0, 1})

	req := baseRequest()
	req.Free = &FreeSpinState{
		SpinsRemaining: 2,
		TotalAwarded:   2,
		TotalMult:      decimal.Zero,
		FeatureWin:     decimal.Zero,
	}
	res, err := ResolveRound(gs, src, req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(res.Steps) != 2 {
		t.Fatalf("expected 2 cascade steps, got %d", len(res.Steps))
	}
	// 第一步：基礎 5.00，累積倍數 0+2 → 套用 2
	if !res.Steps[0].Mult.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("step 0 mult expected 2, got %s", res.Steps[0].Mult)
	}
	if !res.Steps[0].StepWin.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("step 0 win expected 10.00, got %s", res.Steps[0].StepWin)
	}
	// 第二步：累積倍數 2+3=5，套用在本步全額贏分上
	if !res.Steps[1].Mult.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("step 1 mult expected 5, got %s", res.Steps[1].Mult)
	}
	if !res.Steps[1].BaseWin.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("step 1 base win expected 5.00, got %s", res.Steps[1].BaseWin)
	}
	if !res.Steps[1].StepWin.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("step 1 win expected 25.00, got %s", res.Steps[1].StepWin)
	}
	if !res.TotalWin.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("total win expected 35.00, got %s", res.TotalWin)
	}
	if !res.FeatureWin.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("feature win expected 35.00, got %s", res.FeatureWin)
	}
	if res.Scatter != nil {
		t.Fatalf("no scatters expected on final board: %+v", res.Scatter)
	}

	nf := res.NextFree
	if nf == nil || nf.SpinsRemaining != 1 {
		t.Fatalf("free chain mismatch: %+v", nf)
	}
	if !nf.TotalMult.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("accumulated mult expected 5, got %s", nf.TotalMult)
	}
	// 終盤只剩零賠付符號
	for c, col := range res.FinalCols {
		for r, s := range col {
			if s != spec.L2 {
				t.Fatalf("final board (%d,%d) expected L2, got %v", c, r, s)
			}
		}
	}
}
