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
	"github.com/shopspring/decimal"

	"github.com/zintix-labs/megalab/engine"
	"github.com/zintix-labs/megalab/errs"
)

// SessionState 是由業務端帶入的「引擎可恢復狀態」（可選）。
//
// 設計目標：
//   - 讓引擎維持純計算器（stateless / deterministic），而「可回放/可續玩」所需的狀態由業務端保存與回送。
//   - 新局：session 缺省即可；引擎會自行產生本局的 RNG 內部狀態並在回應中回傳 Start/After。
//   - 回放（Replay）：業務端帶入當初記錄的 start_b64u 與免費遊戲快照，即可重現該局結果。
//   - 續玩（Resume/Continue，免費遊戲多局流程）：業務端把上一局回應的 after_b64u 當作下一局的
//     start_b64u、並原樣回送回應中的 free 快照，以延續 RNG 流水與免費遊戲進度。
//
// 重要約束：
//   - Request 只允許提供 Start（start_b64u）；After（after_b64u）只會由引擎在 Response 回傳。
//     本型別刻意不含 after 欄位，配合 DisallowUnknownFields 形成強硬約束。
//   - free 為引擎定義的免費遊戲快照：業務端必須能 round-trip 保存與回送，不得自行竄改欄位。
type SessionState struct {
	// StartCoreSnapB64U：RNG Core 的「起始快照」Base64URL（URL-safe base64）字串。
	//   - 缺省：視為新局（引擎自行起始 RNG）。
	//   - 有值：視為回放/續玩（引擎從該快照 restore RNG）。
	StartCoreSnapB64U string `json:"start_b64u,omitempty"`

	// Free：免費遊戲進行中的最小恢復狀態；nil 代表目前不在免費遊戲。
	Free *FreeSpinStateDTO `json:"free,omitempty"`
}

func (ss *SessionState) HasPayload() bool {
	if ss == nil {
		return false
	}
	return ss.StartCoreSnapB64U != "" || ss.Free != nil
}

// FreeSpinStateDTO 為免費遊戲快照的序列化結構。
type FreeSpinStateDTO struct {
	SpinsRemaining int             `json:"spins_remaining"` // 剩餘免費局數
	TotalAwarded   int             `json:"total_awarded"`   // 本次特色累計獲贈局數（含重觸發）
	TotalMult      decimal.Decimal `json:"total_mult"`      // 累積乘數（跨局累加）
	FeatureWin     decimal.Decimal `json:"feature_win"`     // 特色累計贏分
	JustTriggered  bool            `json:"just_triggered,omitempty"`
}

// toEngine 轉回引擎免費遊戲狀態，並做最基本的結構健全性檢查。
// 合法性（例如是否允許在此狀態購買特色）由引擎層判定。
func (d *FreeSpinStateDTO) toEngine() (*engine.FreeSpinState, error) {
	if d == nil {
		return nil, nil
	}
	if d.SpinsRemaining <= 0 {
		return nil, errs.NewWarn("session free state has no spins remaining")
	}
	if d.TotalAwarded < d.SpinsRemaining {
		return nil, errs.NewWarn("session free state total_awarded below spins_remaining")
	}
	if d.TotalMult.IsNegative() || d.FeatureWin.IsNegative() {
		return nil, errs.NewWarn("session free state carries negative amounts")
	}
	return &engine.FreeSpinState{
		SpinsRemaining: d.SpinsRemaining,
		TotalAwarded:   d.TotalAwarded,
		TotalMult:      d.TotalMult,
		FeatureWin:     d.FeatureWin,
		JustTriggered:  d.JustTriggered,
	}, nil
}

func newFreeSpinStateDTO(fs *engine.FreeSpinState) *FreeSpinStateDTO {
	if fs == nil {
		return nil
	}
	return &FreeSpinStateDTO{
		SpinsRemaining: fs.SpinsRemaining,
		TotalAwarded:   fs.TotalAwarded,
		TotalMult:      fs.TotalMult,
		FeatureWin:     fs.FeatureWin,
		JustTriggered:  fs.JustTriggered,
	}
}

// SpinState 是回應端的會話狀態：RNG 快照（起始/結束）加上下一局應回送的免費遊戲快照。
type SpinState struct {
	StartCoreSnapB64U string            `json:"start_b64u"` // 必回
	AfterCoreSnapB64U string            `json:"after_b64u"` // 必回
	Free              *FreeSpinStateDTO `json:"free,omitempty"`
}
