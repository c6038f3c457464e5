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
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/sdk/board"
	"github.com/zintix-labs/megalab/sdk/entropy"
	"github.com/zintix-labs/megalab/sdk/ways"
	"github.com/zintix-labs/megalab/spec"
)

// ResolveRound 解算一局。
//
// 流程對應：選模式/輪帶 → 建盤 → 消除迴圈（求值/倍數/移除/補落）→
// Scatter 結算與免費遊戲轉移 → 免費局遞減 → 封頂 → 組裝結果。
//
// 消除迴圈不設迭代上限：每步消除會讓盤面朝「無中獎」收斂，
// 終止條件就是求值結果為空。種子已於建盤前備齊，整段為純 CPU 計算。
func ResolveRound(gs *spec.GameSetting, src *entropy.Source, req *Request) (*RoundResult, error) {
	if err := validate(gs, req); err != nil {
		return nil, err
	}

	// 1. 模式、輪帶庫、倍數權重表
	free := req.Free.Clone()
	mode, strip, kind := classify(gs, req, free)

	runningMult := 0
	if free != nil {
		runningMult = int(free.TotalMult.IntPart())
	}
	pol := &multPolicy{ms: &gs.MultSetting, kind: kind, running: &runningMult, free: mode == ModeFree}

	// 2. 建盤（種子指派順序固定，見 board.Build）
	b := board.Build(gs, strip, src, pol)

	res := &RoundResult{
		Mode:       mode,
		TotalWin:   decimal.Zero,
		ScatterWin: decimal.Zero,
		FeatureWin: decimal.Zero,
		BuyCost:    decimal.Zero,
	}
	if req.FeatureBuy {
		res.BuyCost = spec.TruncMoney(req.TotalBet.Mul(decimal.NewFromInt(int64(gs.BuyCostMult))))
	}

	// 3. 消除迴圈
	topMin := gs.TopReelSetting.MinCovered
	one := decimal.NewFromInt(1)
	for stepIdx := 0; ; stepIdx++ {
		before := b.Snapshot()
		topBefore := snapshotTop(b)

		wins, baseWin := ways.Evaluate(ways.Input{Cols: before, Top: topBefore, TopMin: topMin}, &gs.SymbolSetting, req.BaseBet)
		if len(wins) == 0 {
			// 無中獎即收斂：以此快照為最終盤面
			res.FinalCols = before
			res.TopSymbols = topBefore
			break
		}

		// 3a. 倍數：base/buy 每步歸零重算；free 累積後整包套用
		multSum := b.SumMultipliers()
		var factor decimal.Decimal
		if mode == ModeFree {
			add := decimal.NewFromInt(int64(multSum))
			if wc := gs.MultSetting.WildCollect; wc.Enabled {
				if wilds := b.WildMultipliers(wc.MinCol, wc.MaxCol); len(wilds) > 0 {
					prod := 1
					for _, v := range wilds {
						prod *= v
					}
					add = add.Add(decimal.NewFromInt(int64(prod)))
				}
			}
			free.TotalMult = free.TotalMult.Add(add)
			runningMult = int(free.TotalMult.IntPart())
			factor = free.TotalMult
		} else {
			factor = decimal.NewFromInt(int64(multSum))
		}
		if !factor.IsPositive() {
			factor = one
		}

		stepWin := spec.TruncMoney(baseWin.Mul(factor))
		res.TotalWin = res.TotalWin.Add(stepWin)
		if mode == ModeFree {
			free.FeatureWin = free.FeatureWin.Add(stepWin)
		}

		// 3b. 精準按座標移除中獎格；頂輪格原地換新
		var positions []board.Position
		for _, w := range wins {
			positions = append(positions, w.Positions...)
		}
		b.RemovePositions(positions)

		// 3c. 倍數符號單步用完即棄（無論有無參與中獎）
		b.RemovePositions(b.MultiplierPositions())

		// 3d. 補落
		b.Refill(pol)

		res.Steps = append(res.Steps, CascadeStep{
			Index:     stepIdx,
			Before:    before,
			After:     b.Snapshot(),
			TopBefore: topBefore,
			TopAfter:  snapshotTop(b),
			Wins:      wins,
			BaseWin:   baseWin,
			Mult:      factor,
			StepWin:   stepWin,
		})
		res.Wins = append(res.Wins, wins...)
	}

	// 4. Scatter 結算（以消除收斂後的盤面計數）
	free = resolveScatter(gs, req, res, free, mode)

	// 5. 免費局遞減與銷毀
	if mode == ModeFree {
		if free.SpinsRemaining > 0 {
			free.SpinsRemaining--
		}
		free.JustTriggered = false
		res.FeatureWin = free.FeatureWin
		if free.SpinsRemaining == 0 {
			free = nil
		}
	}

	// 6. 封頂：總贏分硬上限 bet × MaxWinMult；封頂實際砍到贏分時，
	//    進行中的免費遊戲立即終結
	winCap := spec.TruncMoney(req.TotalBet.Mul(decimal.NewFromInt(int64(gs.MaxWinMult))))
	if res.TotalWin.GreaterThan(winCap) {
		res.TotalWin = winCap
		res.MaxWinHit = true
		if free != nil {
			free.SpinsRemaining = 0
			free = nil
		}
	}

	// 7. 結果組裝
	res.NextFree = free
	if gs.BoardSetting.Megaways {
		res.ReelHeights = b.EffectiveHeights()
		res.WaysToWin = b.WaysToWin()
	}
	return res, nil
}

// validate 請求驗證：任何違規都是拒絕請求（Warn），不產生任何副作用。
//
// 分工：engine 的請求不含遊戲識別，機台歸屬（game id / name）與投注額
// 是否落在押注單位表內由 Machine.valid 把關；bets 清單的缺省推導
// （base 取 bets[0]、total 取加總）由 dto 解析層完成。走到這裡的請求
// 只需滿足「金額為正」與購買規則。
func validate(gs *spec.GameSetting, req *Request) error {
	if req == nil {
		return errs.NewWarn("nil round request")
	}
	if !req.BaseBet.IsPositive() || !req.TotalBet.IsPositive() {
		return errs.NewWarn("bet must be positive")
	}
	if req.FeatureBuy {
		if !gs.BuyEnabled() {
			return errs.NewWarn("feature buy is not enabled for this game")
		}
		if req.Free != nil && req.Free.SpinsRemaining > 0 {
			return errs.NewWarn("feature buy rejected: free spins already active")
		}
	}
	return nil
}

// classify 依既有狀態與請求決定本局模式、輪帶庫與倍數權重表。
func classify(gs *spec.GameSetting, req *Request, free *FreeSpinState) (Mode, spec.StripMode, spec.MultProfileKind) {
	switch {
	case free != nil && free.SpinsRemaining > 0:
		return ModeFree, spec.StripFree, spec.MultFreeLow
	case req.FeatureBuy:
		return ModeBuy, spec.StripBuy, spec.MultStandard
	case req.BetMode == BetAnte:
		return ModeBase, spec.StripAnte, spec.MultAnte
	}
	return ModeBase, spec.StripBase, spec.MultStandard
}

// resolveScatter 結算 Scatter：取最高達標檔位的賠付，base/buy 首觸建立
// 免費遊戲狀態（下一局生效），free 中達再觸發門檻則延長局數。
func resolveScatter(gs *spec.GameSetting, req *Request, res *RoundResult, free *FreeSpinState, mode Mode) *FreeSpinState {
	count := ways.CountScatters(ways.Input{Cols: res.FinalCols, Top: res.TopSymbols, TopMin: gs.TopReelSetting.MinCovered})
	tier := gs.ScatterSetting.TierFor(count)
	retrigger := mode == ModeFree && gs.ScatterSetting.CanRetrigger(count)
	if tier == nil && !retrigger {
		return free
	}

	sc := &ScatterOutcome{Count: count}

	// Scatter 賠付不分模式一律入帳
	if tier != nil && tier.Pay.IsPositive() {
		sc.Win = spec.TruncMoney(req.TotalBet.Mul(tier.Pay))
		res.ScatterWin = sc.Win
		res.TotalWin = res.TotalWin.Add(sc.Win)
	}

	switch {
	case retrigger:
		free.SpinsRemaining += gs.ScatterSetting.RetriggerSpins
		free.TotalAwarded += gs.ScatterSetting.RetriggerSpins
		sc.Retriggered = true
		sc.SpinsAwarded = gs.ScatterSetting.RetriggerSpins
	case mode != ModeFree && tier != nil && tier.Spins > 0:
		// 獎勵自下一局生效；本局以 FreeSpins 模式回報
		free = &FreeSpinState{
			SpinsRemaining: tier.Spins,
			TotalAwarded:   tier.Spins,
			TotalMult:      decimal.Zero,
			FeatureWin:     decimal.Zero,
			JustTriggered:  true,
		}
		res.Mode = ModeFree
		res.FreeSpinsAwarded = tier.Spins
		sc.SpinsAwarded = tier.Spins
	}

	res.Scatter = sc
	return free
}
