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

	"github.com/shopspring/decimal"

	"github.com/zintix-labs/megalab/corefmt"
	"github.com/zintix-labs/megalab/dto"
	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/stats"
)

// DevSimulator
//
// 只提供給Dev模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSimulator struct {
	sim      *Simulator // 只開放Sim功能
	m        *Machine   // 同步seed
	before   []byte
	after    []byte
	before64 string
	after64  string
}

type DevSpinReport struct {
	Before   string           `json:"start_b64u"`
	After    string           `json:"after_b64u"`
	Round    int              `json:"round"`
	Rtp      float64          `json:"rtp"`
	TotalBet decimal.Decimal  `json:"total_bet"`
	TotalWin decimal.Decimal  `json:"total_win"`
	BaseWin  decimal.Decimal  `json:"base_win"`
	FreeWin  decimal.Decimal  `json:"free_win"`
	Results  []dto.SpinResult `json:"results"`
}

// spinChain 打完一個完整回合鏈：一局付費局，加上其觸發的全部免費局。
// 免費局透過回應的 free 快照回送驅動，與線上續玩協定走同一條路。
func (d *DevSimulator) spinChain(betmode int, ante bool) ([]dto.SpinResult, error) {
	bu := d.m.BetUnits
	if betmode < 0 || betmode >= len(bu) {
		return nil, errs.NewWarn("bet_mode out of range")
	}
	bet := decimal.New(int64(bu[betmode]), -2)
	mode := 0
	if ante {
		mode = 1
	}
	req := &dto.SpinRequest{
		UID:      "dev",
		GameName: d.m.gameName,
		GameId:   d.m.gameId,
		BaseBet:  bet,
		TotalBet: bet,
		BetMode:  mode,
	}
	chain := make([]dto.SpinResult, 0, 1)
	for {
		res, err := d.m.Spin(context.Background(), req)
		if err != nil {
			return nil, err
		}
		chain = append(chain, res)
		if res.State.Free == nil {
			return chain, nil
		}
		req.Session = &dto.SessionState{Free: res.State.Free}
	}
}

func (d *DevSimulator) Spins(betmode int, ante bool, round int) (DevSpinReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevSpinReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	bu := d.m.BetUnits
	if betmode < 0 || betmode >= len(bu) {
		return DevSpinReport{}, errs.NewWarn("bet_mode out of range")
	}
	bet := decimal.New(int64(bu[betmode]), -2)

	// spin
	ds := make([]dto.SpinResult, 0, round)
	totalBet, totalWin, baseWin, freeWin := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for range round {
		chain, err := d.spinChain(betmode, ante)
		if err != nil {
			return DevSpinReport{}, errs.Wrap(err, "spin error")
		}
		totalBet = totalBet.Add(bet)
		for i, r := range chain {
			totalWin = totalWin.Add(r.TotalWin)
			if i == 0 {
				baseWin = baseWin.Add(r.TotalWin)
			} else {
				freeWin = freeWin.Add(r.TotalWin)
			}
		}
		ds = append(ds, chain...)
	}

	de := DevSpinReport{
		Before:   ds[0].State.StartCoreSnapB64U,
		After:    ds[len(ds)-1].State.AfterCoreSnapB64U,
		Round:    round,
		Rtp:      totalWin.Div(totalBet).Mul(decimal.NewFromInt(100)).InexactFloat64(),
		TotalBet: totalBet,
		TotalWin: totalWin,
		BaseWin:  baseWin,
		FreeWin:  freeWin,
		Results:  ds,
	}
	return de, nil
}

func (d *DevSimulator) RestoreSpins(be64 string, betmode int, ante bool, round int) (DevSpinReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevSpinReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	// 解析seed
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSpinReport{}, errs.NewWarn("decode seed failed" + err.Error())
	}
	// restore
	if err := d.m.RestoreCore(be); err != nil {
		return DevSpinReport{}, errs.NewWarn("machine restore failed")
	}
	return d.Spins(betmode, ante, round)
}

type DevSimReport struct {
	Before string            `json:"before"`
	After  string            `json:"after"`
	Stat   *stats.StatReport `json:"statistic"`
}

func (d *DevSimulator) Sim(betmode int, ante bool, round int) (DevSimReport, error) {
	// 先存 before 快照
	m := d.sim.mBuf[0]
	be, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	be64 := corefmt.EncodeBase64URL(be)
	d.before = be
	d.before64 = be64

	// Spin
	bu := d.m.BetUnits
	if betmode < 0 || betmode >= len(bu) {
		return DevSimReport{}, errs.NewWarn("bet_mode out of range")
	}
	if round < 1 || round > 3_000_000 {
		return DevSimReport{}, errs.NewWarn("round must be between 1 and 3,000,000")
	}
	stat, _, err := d.sim.Sim(betmode, ante, round, false)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "sim failed")
	}

	// 再存 after 快照
	af, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	af64 := corefmt.EncodeBase64URL(af)
	d.after = af
	d.after64 = af64

	return DevSimReport{
		Before: be64,
		After:  af64,
		Stat:   stat,
	}, nil
}

func (d *DevSimulator) RestoreSim(be64 string, betmode int, ante bool, round int) (DevSimReport, error) {
	// 反解析 string -> []byte
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "decode seed failed")
	}
	d.before = be
	d.before64 = be64

	// restore
	if err := d.sim.mBuf[0].RestoreCore(be); err != nil {
		return DevSimReport{}, errs.Wrap(err, "restore simulator failed")
	}

	return d.Sim(betmode, ante, round)
}
