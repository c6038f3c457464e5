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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zintix-labs/megalab/corefmt"
	"github.com/zintix-labs/megalab/engine"
	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/spec"
)

type SpinRequest struct {
	UID      string            `json:"uid"`            // 唯一識別碼
	GameName string            `json:"game"`           // 要玩的遊戲
	GameId   spec.GID          `json:"gid"`            // 遊戲機台編號
	Bets     []decimal.Decimal `json:"bets,omitempty"` // 各注項投注額
	BaseBet  decimal.Decimal   `json:"base_bet"`       // 單注（算分基準）；缺省時取 bets[0]
	TotalBet decimal.Decimal   `json:"total_bet"`      // 總投注；缺省時取 bets 加總
	BetMode  int               `json:"bet_mode"`       // 投注模式：0=標準, 1=Ante
	Buy      bool              `json:"buy,omitempty"`  // 是否購買免費遊戲入場
	// Session（可選）：由業務端帶入的引擎可恢復狀態（nil=新局；帶 start_b64u / free=回放/續玩）。
	Session *SessionState `json:"session,omitempty"`
}

// DecodeSpinRequest 會把 HTTP 請求解碼成 SpinRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（uid/game/gid/bets/base_bet/total_bet/bet_mode/buy）。
//     注意：GET 建議僅用於「新局」或簡單測試；巢狀狀態（session）請使用 POST。
//   - POST：從 JSON body 反序列化（支援 session）。
//
// Session 語意：
//   - session 缺省 / 為 null / 為空物件：視為「新局」。
//   - session.start_b64u 有值：視為回放（replay）/ 續玩（resume）：
//     回放帶入當初記錄的 start_b64u；續玩帶入上一局回應的 after_b64u 作為新的 start_b64u，
//     免費遊戲中另須原樣回送回應中的 free 快照。
//   - 引擎的輸入只接受 start_b64u（Start）；after_b64u 只會出現在回應（SpinState），
//     請求端不得自行填寫 after（未知欄位會被嚴格拒絕）。
//
// 注意：
//   - 這裡只負責「解碼（decode）」與基本型別轉換，不做任何遊戲合法性校驗；
//     合法性（例如該 GID 是否存在、投注額是否可用）應由上層（Machine/Runtime）決定。
//   - 為避免過大 body 影響服務，POST 會對 body 做大小限制（預設 1MiB）。
//   - POST 會開啟 DisallowUnknownFields()，對未知欄位採用嚴格拒絕，以避免靜默丟資料。
func DecodeSpinRequest(r *http.Request) (*SpinRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(SpinRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.GameName = q.Get("game")

		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid gid: %v", err))
			}
			req.GameId = spec.GID(u)
		}

		if s := q.Get("bets"); s != "" {
			parts := strings.Split(s, ",")
			req.Bets = make([]decimal.Decimal, len(parts))
			for i, p := range parts {
				v, err := decimal.NewFromString(strings.TrimSpace(p))
				if err != nil {
					return nil, errs.NewWarn(fmt.Sprintf("invalid bets[%d]: %v", i, err))
				}
				req.Bets[i] = v
			}
		}

		if s := q.Get("base_bet"); s != "" {
			v, err := decimal.NewFromString(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid base_bet: %v", err))
			}
			req.BaseBet = v
		}

		if s := q.Get("total_bet"); s != "" {
			v, err := decimal.NewFromString(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid total_bet: %v", err))
			}
			req.TotalBet = v
		}

		if s := q.Get("bet_mode"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid bet_mode: %v", err))
			}
			req.BetMode = v
		}

		if s := q.Get("buy"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.NewWarn("invalid buy value " + err.Error())
			}
			req.Buy = v
		}

		return req, nil

	case http.MethodPost:
		// 防止 body 過大（預設 1MiB）
		const maxBody = 1 << 20
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}

// Parse 把外部請求轉成引擎請求，並解出 RNG 起始快照（無快照時回傳 nil）。
//
// 這裡補齊缺省欄位並做協議層檢查：
//   - base_bet 缺省時取 bets[0]；total_bet 缺省時取 bets 加總。
//   - bet_mode 超出已知範圍視為格式錯誤。
//   - session.free 的結構健全性（剩餘局數、非負金額）在此把關；
//     遊戲層合法性（購買規則、投注額是否可用）仍由引擎/機台判定。
func (sr *SpinRequest) Parse() (*engine.Request, []byte, error) {
	base := sr.BaseBet
	total := sr.TotalBet
	if base.IsZero() && len(sr.Bets) > 0 {
		base = sr.Bets[0]
	}
	if total.IsZero() && len(sr.Bets) > 0 {
		sum := decimal.Zero
		for _, b := range sr.Bets {
			sum = sum.Add(b)
		}
		total = sum
	}

	var mode engine.BetMode
	switch sr.BetMode {
	case 0:
		mode = engine.BetStandard
	case 1:
		mode = engine.BetAnte
	default:
		return nil, nil, errs.NewWarn(fmt.Sprintf("unknown bet_mode %d", sr.BetMode))
	}

	var startSnap []byte
	var free *engine.FreeSpinState
	if sr.Session.HasPayload() {
		if b64u := sr.Session.StartCoreSnapB64U; b64u != "" {
			snap, err := corefmt.DecodeBase64URL(b64u)
			if err != nil {
				return nil, nil, errs.NewWarn("core snap decode failed " + err.Error())
			}
			startSnap = snap
		}
		fs, err := sr.Session.Free.toEngine()
		if err != nil {
			return nil, nil, err
		}
		free = fs
	}

	req := &engine.Request{
		BaseBet:    base,
		TotalBet:   total,
		BetMode:    mode,
		FeatureBuy: sr.Buy,
		Free:       free,
	}
	return req, startSnap, nil
}
