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

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zintix-labs/megalab/corefmt"
	"github.com/zintix-labs/megalab/engine"
	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/sdk/ways"
	"github.com/zintix-labs/megalab/spec"
)

// StatusOK 表示本局正常結算。錯誤情境不走本結構，由 HTTP 層的錯誤回應承載。
const StatusOK = 0

type SpinResult struct {
	Status    int             `json:"status"`               // 結算狀態碼（0=正常）
	GameName  string          `json:"game"`                 // 遊戲名稱
	GameID    spec.GID        `json:"gameid"`               // 遊戲編號
	RoundID   string          `json:"round_id"`             // 本局唯一編號
	Timestamp int64           `json:"ts"`                   // 結算時間（Unix 毫秒）
	Mode      string          `json:"mode"`                 // base_game / buy_entry / free_spins
	TotalWin  decimal.Decimal `json:"win"`                  // 總贏分
	ScatWin   decimal.Decimal `json:"scatter_win"`          // Scatter 直接派彩
	FeatWin   decimal.Decimal `json:"feature_win"`          // 免費遊戲累計贏分
	BuyCost   decimal.Decimal `json:"buy_cost"`             // 購買入場費（非購買局為 0）
	FreeSpins int             `json:"free_spins,omitempty"` // 本局新獲贈的免費局數
	MaxWinHit bool            `json:"max_win_hit,omitempty"`
	Results   RoundResults    `json:"results"`    // 逐串消明細
	State     SpinState       `json:"spin_state"` // 會話狀態（RNG 快照 + 免費遊戲快照）
}

// RoundResults 為對外輸出的單局明細。
type RoundResults struct {
	Cascades    []CascadeStepDTO   `json:"cascades,omitempty"`
	Wins        []SymbolWinDTO     `json:"wins,omitempty"` // 全局彙總（跨串消）
	Scatter     *ScatterOutcomeDTO `json:"scatter,omitempty"`
	ReelsFinal  [][]spec.Symbol    `json:"reels_final"` // 終盤各軸符號（由下而上）
	ReelHeights []int              `json:"reel_heights,omitempty"`
	TopReel     []spec.Symbol      `json:"top_reel,omitempty"` // 覆蓋軸由左而右
	Ways        int                `json:"ways,omitempty"`
}

// CascadeStepDTO 為單次串消（評分→消除→补位）的輸出結構。
type CascadeStepDTO struct {
	Index    int             `json:"index"`
	Before   [][]spec.Symbol `json:"before"`
	After    [][]spec.Symbol `json:"after"`
	TopStart []spec.Symbol   `json:"top_before,omitempty"`
	TopEnd   []spec.Symbol   `json:"top_after,omitempty"`
	Wins     []SymbolWinDTO  `json:"wins,omitempty"`
	BaseWin  decimal.Decimal `json:"base_win"`
	Mult     decimal.Decimal `json:"mult"` // 本次實際套用的乘數
	StepWin  decimal.Decimal `json:"step_win"`
}

// SymbolWinDTO 盤面算分細項
type SymbolWinDTO struct {
	Symbol spec.Symbol     `json:"symbol"` // 圖標ID
	Count  int             `json:"count"`  // 參與命中的符號總顆數（含 Wild 替代）
	Ways   int             `json:"ways"`   // 組合數量（各軸命中數乘積）
	Cols   int             `json:"cols"`   // 自第 1 軸起的連續命中軸數
	Payout decimal.Decimal `json:"payout"`
	Hits   []PositionDTO   `json:"hits,omitempty"`
}

type PositionDTO struct {
	Col int `json:"col"`
	Row int `json:"row"` // -1 代表該軸的頂輪格
}

type ScatterOutcomeDTO struct {
	Count        int             `json:"count"`
	Win          decimal.Decimal `json:"win"`
	SpinsAwarded int             `json:"spins_awarded,omitempty"`
	Retriggered  bool            `json:"retriggered,omitempty"`
}

// NewSpinResultDTO 把引擎結算結果組成對外回應。
// startSnap / afterSnap 為 RNG Core 在本局前後的快照，原樣以 Base64URL 回傳供審計與續玩。
func NewSpinResultDTO(gs *spec.GameSetting, roundID string, rr *engine.RoundResult, startSnap, afterSnap []byte) (SpinResult, error) {
	if rr == nil {
		return SpinResult{}, errs.NewWarn("round result is nil")
	}

	state := SpinState{
		StartCoreSnapB64U: corefmt.EncodeBase64URL(startSnap),
		AfterCoreSnapB64U: corefmt.EncodeBase64URL(afterSnap),
		Free:              newFreeSpinStateDTO(rr.NextFree),
	}

	res := SpinResult{
		Status:    StatusOK,
		GameName:  gs.GameName,
		GameID:    spec.GID(gs.GameID),
		RoundID:   roundID,
		Timestamp: time.Now().UnixMilli(),
		Mode:      rr.Mode.String(),
		TotalWin:  rr.TotalWin,
		ScatWin:   rr.ScatterWin,
		FeatWin:   rr.FeatureWin,
		BuyCost:   rr.BuyCost,
		FreeSpins: rr.FreeSpinsAwarded,
		MaxWinHit: rr.MaxWinHit,
		Results:   newRoundResultsDTO(rr),
		State:     state,
	}
	return res, nil
}

func newRoundResultsDTO(rr *engine.RoundResult) RoundResults {
	out := RoundResults{
		Wins:        newSymbolWinDTOs(rr.Wins),
		ReelsFinal:  rr.FinalCols,
		ReelHeights: rr.ReelHeights,
		TopReel:     rr.TopSymbols,
		Ways:        rr.WaysToWin,
	}
	if rr.Scatter != nil {
		out.Scatter = &ScatterOutcomeDTO{
			Count:        rr.Scatter.Count,
			Win:          rr.Scatter.Win,
			SpinsAwarded: rr.Scatter.SpinsAwarded,
			Retriggered:  rr.Scatter.Retriggered,
		}
	}
	if len(rr.Steps) > 0 {
		out.Cascades = make([]CascadeStepDTO, len(rr.Steps))
		for i, st := range rr.Steps {
			out.Cascades[i] = CascadeStepDTO{
				Index:    st.Index,
				Before:   st.Before,
				After:    st.After,
				TopStart: st.TopBefore,
				TopEnd:   st.TopAfter,
				Wins:     newSymbolWinDTOs(st.Wins),
				BaseWin:  st.BaseWin,
				Mult:     st.Mult,
				StepWin:  st.StepWin,
			}
		}
	}
	return out
}

// 引擎產出的快照都已深拷貝，這裡直接引用切片、只轉換型別，避免多餘的 make/拷貝造成 GC 波動。
func newSymbolWinDTOs(wins []ways.SymbolWin) []SymbolWinDTO {
	if len(wins) == 0 {
		return nil
	}
	out := make([]SymbolWinDTO, len(wins))
	for i, w := range wins {
		hits := make([]PositionDTO, len(w.Positions))
		for j, p := range w.Positions {
			hits[j] = PositionDTO{Col: p.Col, Row: p.Row}
		}
		out[i] = SymbolWinDTO{
			Symbol: w.Sym,
			Count:  w.Count,
			Ways:   w.Ways,
			Cols:   w.Cols,
			Payout: w.Payout,
			Hits:   hits,
		}
	}
	return out
}
