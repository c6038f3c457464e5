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

package entropy

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/megalab/sdk/core"
	"github.com/zintix-labs/megalab/spec"
)

func newFallback() *core.Core {
	return core.New(core.Default().New(1))
}

func TestIndex(t *testing.T) {
	if got := Index(7, 5); got != 2 {
		t.Fatalf("Index(7,5) expected 2, got %d", got)
	}
	if got := Index(-7, 5); got != 2 {
		t.Fatalf("Index(-7,5) expected 2, got %d", got)
	}
	if got := Index(3, 0); got != 0 {
		t.Fatalf("Index with n=0 expected 0, got %d", got)
	}
	// 最小負值不能溢位，結果必須落在範圍內
	if got := Index(math.MinInt, 16); got < 0 || got >= 16 {
		t.Fatalf("Index(MinInt,16) out of range: %d", got)
	}
	if got := Index(math.MinInt, 7); got < 0 || got >= 7 {
		t.Fatalf("Index(MinInt,7) out of range: %d", got)
	}
}

func TestHeightFrom(t *testing.T) {
	if got := HeightFrom(4, 2, 7); got != 6 {
		t.Fatalf("HeightFrom(4,2,7) expected 6, got %d", got)
	}
	if got := HeightFrom(99, 3, 3); got != 3 {
		t.Fatalf("degenerate range expected 3, got %d", got)
	}
	if got := HeightFrom(-4, 2, 7); got < 2 || got > 7 {
		t.Fatalf("negative seed out of range: %d", got)
	}
	for seed := -20; seed < 20; seed++ {
		if got := HeightFrom(seed, 2, 5); got < 2 || got > 5 {
			t.Fatalf("seed %d out of range: %d", seed, got)
		}
	}
}

func TestSourceDrawOrder(t *testing.T) {
	s := NewSource(newFallback())
	s.Load(ReelStart, []int{10, 20})
	s.Load(ReelHeight, []int{7})

	if got := s.Draw(ReelStart); got != 10 {
		t.Fatalf("first draw expected 10, got %d", got)
	}
	// 不同用途各自推進，互不影響
	if got := s.Draw(ReelHeight); got != 7 {
		t.Fatalf("reel height draw expected 7, got %d", got)
	}
	if got := s.Draw(ReelStart); got != 20 {
		t.Fatalf("second draw expected 20, got %d", got)
	}
	if s.Shortfall() != 0 {
		t.Fatalf("no shortfall expected yet, got %d", s.Shortfall())
	}

	// 池耗盡改由本地 PRNG 補足，且計入 shortfall
	_ = s.Draw(ReelStart)
	if s.Shortfall() != 1 {
		t.Fatalf("expected shortfall 1, got %d", s.Shortfall())
	}

	many := s.DrawMany(Multiplier, 3)
	if len(many) != 3 {
		t.Fatalf("DrawMany length mismatch: %d", len(many))
	}
	if s.Shortfall() != 4 {
		t.Fatalf("expected shortfall 4, got %d", s.Shortfall())
	}
}

func TestSourceLoadReset(t *testing.T) {
	s := NewSource(newFallback())
	s.Load(ReelStart, []int{1, 2})
	_ = s.Draw(ReelStart)
	s.Load(ReelStart, []int{9})
	if got := s.Draw(ReelStart); got != 9 {
		t.Fatalf("reload must reset read position, got %d", got)
	}
}

type stubPool struct {
	pools [][]int
	err   error
}

func (p *stubPool) RequestPools(ctx context.Context, gid spec.GID, roundID string, specs []PoolSpec) ([][]int, error) {
	return p.pools, p.err
}

func TestFetchNilClient(t *testing.T) {
	s, err := Fetch(context.Background(), nil, 1, "r1", []PoolSpec{{Purpose: ReelStart, Count: 2}}, newFallback())
	if err != nil {
		t.Fatalf("nil client must not error: %v", err)
	}
	_ = s.Draw(ReelStart)
	if s.Shortfall() != 1 {
		t.Fatalf("nil client draws must come from fallback")
	}
}

func TestFetchDegradesOnError(t *testing.T) {
	client := &stubPool{err: errors.New("pool down")}
	s, err := Fetch(context.Background(), client, 1, "r1", []PoolSpec{{Purpose: ReelStart, Count: 2}}, newFallback())
	if err == nil {
		t.Fatalf("expected degradation report")
	}
	if s == nil {
		t.Fatalf("source must stay usable on pool failure")
	}
	// 失敗後所有種子由本地 PRNG 吸收，不中止
	_ = s.Draw(ReelStart)
	_ = s.Draw(Multiplier)
	if s.Shortfall() != 2 {
		t.Fatalf("expected shortfall 2, got %d", s.Shortfall())
	}
}

func TestFetchPoolCountMismatch(t *testing.T) {
	client := &stubPool{pools: [][]int{{1, 2}}}
	specs := []PoolSpec{
		{Purpose: ReelStart, Count: 2},
		{Purpose: Multiplier, Count: 4},
	}
	s, err := Fetch(context.Background(), client, 1, "r1", specs, newFallback())
	if err == nil {
		t.Fatalf("expected mismatch report")
	}
	_ = s.Draw(ReelStart)
	if s.Shortfall() != 1 {
		t.Fatalf("mismatched pools must not be loaded")
	}
}

func TestFetchLoadsPools(t *testing.T) {
	client := &stubPool{pools: [][]int{{11, 22}, {33}}}
	specs := []PoolSpec{
		{Purpose: ReelStart, Count: 2},
		{Purpose: Multiplier, Count: 1},
	}
	s, err := Fetch(context.Background(), client, 1, "r1", specs, newFallback())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := s.Draw(ReelStart); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
	if got := s.Draw(Multiplier); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	if s.Shortfall() != 0 {
		t.Fatalf("no shortfall expected, got %d", s.Shortfall())
	}
}

func TestPurposeString(t *testing.T) {
	if ReelStart.String() != "reel_start" || TopReelSymbol.String() != "top_reel_symbol" {
		t.Fatalf("purpose names mismatch")
	}
	if Purpose(99).String() != "unknown" {
		t.Fatalf("out of range purpose must be unknown")
	}
}
