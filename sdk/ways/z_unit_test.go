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

package ways

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/sdk/board"
	"github.com/zintix-labs/megalab/spec"
)

func newTestSymbols(t *testing.T) *spec.SymbolSetting {
	t.Helper()
	ss := &spec.SymbolSetting{
		SymbolUsedStr: []string{"W1", "C1", "H1", "L1"},
		PayTable: [][]int64{
			{0, 0, 0},
			{0, 0, 0},
			{0, 100, 500},
			{0, 0, 100},
		},
	}
	if err := ss.Init(); err != nil {
		t.Fatalf("symbol setting init: %v", err)
	}
	return ss
}

func bet(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEvaluateWildSubstitution(t *testing.T) {
	ss := newTestSymbols(t)
	in := Input{Cols: [][]spec.Symbol{
		{spec.H1},
		{spec.H1, spec.W1},
		{spec.H1},
	}}
	wins, total := Evaluate(in, ss, bet("1.00"))
	if len(wins) != 1 {
		t.Fatalf("expected 1 winning symbol, got %d", len(wins))
	}
	w := wins[0]
	if w.Sym != spec.H1 || w.Cols != 3 || w.Ways != 2 || w.Count != 4 {
		t.Fatalf("unexpected win: %+v", w)
	}
	// 1.00 x 5.00 x 2 ways
	if !total.Equal(bet("10.00")) {
		t.Fatalf("expected total 10.00, got %s", total)
	}
	if len(w.Positions) != 4 {
		t.Fatalf("expected 4 positions, got %d", len(w.Positions))
	}
}

func TestEvaluateColumnZeroLiteralOnly(t *testing.T) {
	ss := newTestSymbols(t)
	// 第 1 軸只有 Wild：Wild 不在第 1 軸代打，直接出局
	in := Input{Cols: [][]spec.Symbol{
		{spec.W1},
		{spec.H1},
		{spec.H1},
	}}
	wins, total := Evaluate(in, ss, bet("1.00"))
	if len(wins) != 0 || !total.IsZero() {
		t.Fatalf("expected no wins, got %d / %s", len(wins), total)
	}
}

func TestEvaluateContiguity(t *testing.T) {
	ss := newTestSymbols(t)
	// 第 2 軸斷掉，第 3 軸的 H1 不得續算
	in := Input{Cols: [][]spec.Symbol{
		{spec.H1},
		{spec.L1},
		{spec.H1},
	}}
	wins, total := Evaluate(in, ss, bet("1.00"))
	if len(wins) != 0 || !total.IsZero() {
		t.Fatalf("single column run must not pay, got %d / %s", len(wins), total)
	}
}

func TestEvaluateZeroTierFiltered(t *testing.T) {
	ss := newTestSymbols(t)
	// L1 兩軸檔位為 0：連線成立但賠付為零，不得入列
	in := Input{Cols: [][]spec.Symbol{
		{spec.L1},
		{spec.L1},
		{spec.H1},
	}}
	wins, total := Evaluate(in, ss, bet("1.00"))
	if len(wins) != 0 || !total.IsZero() {
		t.Fatalf("zero tier must be filtered, got %d / %s", len(wins), total)
	}
}

func TestEvaluateTopReel(t *testing.T) {
	ss := newTestSymbols(t)
	in := Input{
		Cols: [][]spec.Symbol{
			{spec.H1},
			{spec.L1},
			{spec.H1},
		},
		Top:    []spec.Symbol{spec.H1},
		TopMin: 1,
	}
	wins, total := Evaluate(in, ss, bet("1.00"))
	if len(wins) != 1 {
		t.Fatalf("expected 1 win via top reel, got %d", len(wins))
	}
	w := wins[0]
	if w.Cols != 3 || w.Ways != 1 {
		t.Fatalf("unexpected win: %+v", w)
	}
	if !total.Equal(bet("5.00")) {
		t.Fatalf("expected 5.00, got %s", total)
	}
	found := false
	for _, p := range w.Positions {
		if p.Col == 1 && p.Row == board.RowTop {
			found = true
		}
	}
	if !found {
		t.Fatalf("top reel position missing: %+v", w.Positions)
	}
}

func TestEvaluateTruncation(t *testing.T) {
	ss := &spec.SymbolSetting{
		SymbolUsedStr: []string{"H1"},
		PayTable:      [][]int64{{0, 33}},
	}
	if err := ss.Init(); err != nil {
		t.Fatalf("symbol setting init: %v", err)
	}
	in := Input{Cols: [][]spec.Symbol{{spec.H1}, {spec.H1}}}
	// 0.10 x 0.33 = 0.033 → 無條件捨去到 0.03
	_, total := Evaluate(in, ss, bet("0.10"))
	if !total.Equal(bet("0.03")) {
		t.Fatalf("expected truncation to 0.03, got %s", total)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	ss := newTestSymbols(t)
	in := Input{Cols: [][]spec.Symbol{
		{spec.H1, spec.L1},
		{spec.H1, spec.W1},
		{spec.H1},
	}}
	_, first := Evaluate(in, ss, bet("1.00"))
	_, second := Evaluate(in, ss, bet("1.00"))
	if !first.Equal(second) {
		t.Fatalf("evaluation must be pure: %s vs %s", first, second)
	}
}

func TestCountScatters(t *testing.T) {
	in := Input{
		Cols: [][]spec.Symbol{
			{spec.C1, spec.H1},
			{spec.L1},
			{spec.C1, spec.C1},
		},
		Top:    []spec.Symbol{spec.C1, spec.L1},
		TopMin: 1,
	}
	if got := CountScatters(in); got != 4 {
		t.Fatalf("expected 4 scatters, got %d", got)
	}
	if got := CountScatters(Input{Cols: [][]spec.Symbol{{spec.H1}}}); got != 0 {
		t.Fatalf("expected 0 scatters, got %d", got)
	}
}
