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

package megalab

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/zintix-labs/megalab/dto"
	"github.com/zintix-labs/megalab/engine"
	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/sdk/core"
	"github.com/zintix-labs/megalab/sdk/entropy"
	"github.com/zintix-labs/megalab/spec"
)

// Machine 封裝一台「可對外提供 Spin」的遊戲機台。
//
// 你可以把 Machine 視為引擎的「外殼（shell）」：
//   - 對外：提供 Spin 入口（HTTP/模擬器通常只操作 Machine）。
//   - 對內：持有 RNG（Core，作為種子池的備援）與本機台的遊戲設定。
//
// 並發語意：
//   - 同一台 Machine 不應被多 goroutine 同時 Spin（以 mu 防護 Core 狀態一致性）。
//   - 若要併發模擬，由更高層建立多台 Machine 分散到不同 worker 並管理其生命週期。
//
// 種子語意：
//   - 每局會先依 engine.PoolSpecs 向外部種子池請求本局所需的各用途種子；
//     外部失敗或不足時退回本機 Core 現抽（非致命，局面照常結算）。
//   - initseed 用於記錄出生時的 seed（追溯/重現的基礎資訊）；完整審計仍以 Core 的 Snapshot/Restore 為準。
type Machine struct {
	gameName string               // 遊戲名稱（來自 GameSetting.GameName，主要用於觀測/日誌）
	gameId   spec.GID             // 遊戲 ID（Catalog 內唯一；用於路由與查表）
	core     *core.Core           // RNG 核心（PRNG + Snapshot/Restore 合約；種子池備援）
	gs       *spec.GameSetting    // 本機台的完整遊戲設定（已 Init）
	pool     entropy.PoolClient   // 外部種子池客戶端；nil 代表純本機抽樣
	BetUnits []int                // 押注單位（基準貨幣的百分位；通常給外部列舉 UI/測試）
	mu       sync.Mutex           // 防併發鎖：保護 Core 狀態一致性
	initseed int64                // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

// newMachine 以「隨機 seed」建立 Machine。
//
// 這裡使用 crypto/rand 產生 seed 是為了：
//   - 在對外服務情境避免可預測 RNG
//   - 同時保留可追溯性（seed 會被記錄在 Machine.initseed）
//
// seed 只保證了新建的Machine起點，如果需要在任意局後將機台"重設"到任意Core節點，請利用Snapshot Restore來操作
func newMachine(gs *spec.GameSetting, cf core.PRNGFactory, pool entropy.PoolClient) (*Machine, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newMachineWithSeed(gs, cf, pool, seed.Int64())
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// 這是最常用的「可重現」入口：同一份 GameSetting + 同一個 seed（且不接外部種子池），
// 應能得到一致的隨機序列（取決於 Core 實作）。
func newMachineWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, pool entropy.PoolClient, seed int64) (*Machine, error) {
	if gs == nil {
		return nil, errs.NewFatal("game setting is nil")
	}
	m := &Machine{
		gameName: gs.GameName,
		gameId:   spec.GID(gs.GameID),
		core:     core.New(cf.New(seed)),
		gs:       gs,
		pool:     pool,
		BetUnits: gs.BetUnits,
		initseed: seed,
	}
	return m, nil
}

// Spin 為主要公開入口，會驗證投注請求，結算一局並回傳結果。
func (m *Machine) Spin(ctx context.Context, r *dto.SpinRequest) (dto.SpinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 校驗請求合法性
	if err := m.valid(r); err != nil {
		return dto.SpinResult{}, err
	}
	// 2. parse dto to engine request
	req, replaySnap, err := r.Parse()
	if err != nil {
		return dto.SpinResult{}, err
	}

	// 3. get start snapshot
	startsnap, err := m.SnapshotCore()
	if err != nil {
		return dto.SpinResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap
	if len(replaySnap) != 0 {
		startsnap = replaySnap
		if err := m.RestoreCore(replaySnap); err != nil {
			return dto.SpinResult{}, errs.NewWarn("restore core err " + err.Error())
		}
	}

	// 4. 取本局種子（外部池失敗只記錄，照常以本機 Core 備援）
	roundID := engine.NewRoundID()
	src, serr := entropy.Fetch(ctx, m.pool, m.gameId, roundID, engine.PoolSpecs(m.gs), m.core)
	if serr != nil {
		slog.Warn("entropy pool degraded", "game", m.gameName, "round", roundID, "err", serr)
	}

	// 5. resolve round
	rr, err := engine.ResolveRound(m.gs, src, req)
	if err != nil {
		if len(replaySnap) != 0 {
			if e := m.RestoreCore(rem); e != nil {
				return dto.SpinResult{}, errs.NewFatal("fall back err " + e.Error())
			}
		}
		return dto.SpinResult{}, err
	}

	// 6. get after snapshot
	aftersnap, err := m.SnapshotCore()
	if err != nil {
		if e := m.RestoreCore(rem); e != nil {
			return dto.SpinResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.SpinResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}

	// 7. restore if needed（回放不得污染本機 RNG 流水）
	if len(replaySnap) != 0 {
		if err := m.RestoreCore(rem); err != nil {
			return dto.SpinResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	// 8. dto
	return dto.NewSpinResultDTO(m.gs, roundID, rr, startsnap, aftersnap)
}

// SpinInternal 直接結算一局並回傳內部結果；常用於模擬器或測試。
//
// 請勿在正式環境使用
//
// 此行為跳過所有請求檢查，以指定押注單位下注；不經外部種子池，一律本機抽樣。
// 免費遊戲鏈由呼叫端自行續跑（把回傳的 NextFree 原樣帶入下一次呼叫）。
func (m *Machine) SpinInternal(betMode int, ante bool, free *engine.FreeSpinState) *engine.RoundResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if betMode < 0 || betMode >= len(m.BetUnits) {
		betMode = 0
	}
	bet := decimal.New(int64(m.BetUnits[betMode]), -2)
	bm := engine.BetStandard
	if ante {
		bm = engine.BetAnte
	}
	req := &engine.Request{
		BaseBet:  bet,
		TotalBet: bet,
		BetMode:  bm,
		Free:     free,
	}

	src := entropy.NewSource(m.core)
	rr, err := engine.ResolveRound(m.gs, src, req)
	if err != nil {
		// 內部組出的請求不應被拒絕；真發生就是設定錯誤
		slog.Error("internal spin rejected", "game", m.gameName, "err", err)
		return nil
	}
	return rr
}

func (m *Machine) valid(req *dto.SpinRequest) error {
	if req == nil {
		return errs.NewWarn("nil spin request")
	}
	if m.gameId != req.GameId {
		return errs.NewWarn("game id is not matched")
	}
	if m.gameName != req.GameName {
		return errs.NewWarn("game name is not matched")
	}
	// 免費遊戲續玩局不驗注額（沿用觸發局的投注），新局的單注必須落在押注單位表內
	if req.Session != nil && req.Session.Free != nil {
		return nil
	}
	base := req.BaseBet
	if base.IsZero() && len(req.Bets) > 0 {
		base = req.Bets[0]
	}
	for _, u := range m.BetUnits {
		if base.Equal(decimal.New(int64(u), -2)) {
			return nil
		}
	}
	return errs.NewWarn("error bet value")
}

// SnapshotCore 取得Core狀態暫存 當前僅提供取得Core狀態
//
// 之後要實作斷線重連時候提供checkpoint加入必要恢復資訊時實作
// SnapShot() <- 保留語意
func (m *Machine) SnapshotCore() ([]byte, error) {
	return m.core.Snapshot()
}

// RestoreCore 恢復Core狀態暫存 當前僅提供恢復Core狀態
//
// 之後要實作斷線重連時候提供checkpoint加入必要恢復資訊時實作
// Restore() <- 保留語意
func (m *Machine) RestoreCore(src []byte) error {
	return m.core.Restore(src)
}
