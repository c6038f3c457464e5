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

// Package entropy 提供「按用途分池」的種子來源。
//
// 一局開始時依用途（輪帶起點、軸高、倍數值、頂輪位置、頂輪符號）
// 一次性請求外部種子池；外部來源失敗或數量不足時，缺口由本地 PRNG 補足。
// 補足是靜默且非致命的：一局的解算絕不因缺乏外部熵而中止。
//
// 種子到數值的映射一律為 |seed| mod range，對任何 32/64-bit 負種子
// （含最小值）都回傳非負且在範圍內的結果。
package entropy

import (
	"context"

	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/sdk/core"
	"github.com/zintix-labs/megalab/spec"
)

// Purpose 種子用途。每個用途一個獨立種子池，彼此消耗互不影響。
type Purpose int

const (
	ReelStart     Purpose = iota // 每軸輪帶起點偏移
	ReelHeight                   // Megaways 每軸高度
	Multiplier                   // 倍數符號攜帶值
	TopReelPos                   // 頂部輪帶旋轉位置
	TopReelSymbol                // 頂部輪帶每格符號

	purposeCount
)

var purposeNames = [purposeCount]string{"reel_start", "reel_height", "multiplier", "top_reel_pos", "top_reel_symbol"}

func (p Purpose) String() string {
	if p < 0 || p >= purposeCount {
		return "unknown"
	}
	return purposeNames[p]
}

// PoolSpec 描述一個種子池的需求量。
type PoolSpec struct {
	Purpose Purpose `json:"purpose"`
	Count   int     `json:"count"`
}

// PoolClient 外部種子池服務的合約（外部協作者，由上層注入）。
// 回傳值依 specs 順序逐池對應；任何錯誤或短缺都由 Source 以本地 PRNG 吸收。
type PoolClient interface {
	RequestPools(ctx context.Context, gid spec.GID, roundID string, specs []PoolSpec) ([][]int, error)
}

// Source 一局的種子來源。非併發安全：一局一個 Source，用完即棄。
type Source struct {
	pools     [purposeCount][]int
	next      [purposeCount]int
	fb        *core.Core
	shortfall int
}

// NewSource 建立只依賴本地 PRNG 的種子來源（無外部池，全部即抽）。
func NewSource(fb *core.Core) *Source {
	return &Source{fb: fb}
}

// Fetch 向外部種子池一次性請求本局所需的所有種子。
//
// 失敗語意（重要）：client 錯誤、回傳池數不符、單池短缺，一律不中止流程；
// 回傳的 Source 永遠可用，缺多少補多少。第二個回傳值僅供上層記錄
// （errs.Log 級），絕不應向呼叫端傳播。
func Fetch(ctx context.Context, client PoolClient, gid spec.GID, roundID string, specs []PoolSpec, fb *core.Core) (*Source, error) {
	s := NewSource(fb)
	if client == nil || len(specs) == 0 {
		return s, nil
	}

	pools, err := client.RequestPools(ctx, gid, roundID, specs)
	if err != nil {
		return s, errs.Wrap(err, "entropy: pool request failed, falling back to local prng")
	}
	if len(pools) != len(specs) {
		return s, errs.Logf("entropy: pool count mismatch: want %d got %d", len(specs), len(pools))
	}
	for i, ps := range specs {
		s.Load(ps.Purpose, pools[i])
	}
	return s, nil
}

// Load 掛入一池種子（覆寫同用途舊池並重置讀取位置）。
func (s *Source) Load(p Purpose, seeds []int) {
	if p < 0 || p >= purposeCount {
		return
	}
	s.pools[p] = seeds
	s.next[p] = 0
}

// Draw 取下一顆指定用途的種子；該池耗盡時改由本地 PRNG 產生。
func (s *Source) Draw(p Purpose) int {
	if p >= 0 && p < purposeCount {
		if i := s.next[p]; i < len(s.pools[p]) {
			s.next[p] = i + 1
			return s.pools[p][i]
		}
	}
	s.shortfall++
	return int(s.fb.Uint64())
}

// DrawMany 依序取 n 顆指定用途的種子。
func (s *Source) DrawMany(p Purpose, n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = s.Draw(p)
	}
	return out
}

// Shortfall 回傳本局由本地 PRNG 補足的種子數（觀測用）。
func (s *Source) Shortfall() int {
	return s.shortfall
}

// Index 將種子映射到 [0,n)：|seed| mod n。
// n <= 0 回傳 0；seed 為最小負值時透過無號取負避免溢位。
func Index(seed, n int) int {
	if n <= 0 {
		return 0
	}
	u := uint(seed)
	if seed < 0 {
		u = -u
	}
	return int(u % uint(n))
}

// HeightFrom 以種子抽出 [min,max] 的軸高：min + |seed| mod (max-min+1)。
func HeightFrom(seed, min, max int) int {
	if max <= min {
		return min
	}
	return min + Index(seed, max-min+1)
}
