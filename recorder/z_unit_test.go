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

package recorder

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestNewSpinRecorderValidation(t *testing.T) {
	if _, err := NewSpinRecorder("g", 1, nil, 0, 0); err == nil {
		t.Fatalf("empty bet units must be rejected")
	}
	if _, err := NewSpinRecorder("g", 1, []int{100, 0}, 0, 0); err == nil {
		t.Fatalf("non-positive bet unit must be rejected")
	}
	if _, err := NewSpinRecorder("g", 1, []int{100}, 0, 1); err == nil {
		t.Fatalf("bet mode out of range must be rejected")
	}
	if _, err := NewSpinRecorder("g", 1, []int{100}, -1, 0); err == nil {
		t.Fatalf("negative init bets must be rejected")
	}
}

func TestRecordAndDone(t *testing.T) {
	rec, err := NewSpinRecorder("g", 1, []int{100}, 0, 0)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	rec.Record(RoundRecord{Bet: 100, TotalWin: 200, BaseWin: 150, FreeWin: 50, Triggered: true})
	rec.Record(RoundRecord{Bet: 100})

	st := rec.Done()
	s := st.Summary
	if s.Rounds != 2 || s.TotalBet != 200 || s.TotalWin != 200 {
		t.Fatalf("summary totals mismatch: %+v", s)
	}
	if s.BaseWin != 150 || s.FreeWin != 50 {
		t.Fatalf("win split mismatch: %+v", s)
	}
	if s.RTP != 1.0 {
		t.Fatalf("rtp expected 1.0, got %f", s.RTP)
	}
	if s.Trigger != 1 || s.TriggerRate != 0.5 {
		t.Fatalf("trigger stats mismatch: %+v", s)
	}
	// 第二局零贏分落入 [0,0] 區間
	if s.NoWinRounds != 1 || s.HitRate != 0.5 {
		t.Fatalf("hit rate mismatch: %+v", s)
	}
	if st.Mult.TotalWinMult != 2.0 {
		t.Fatalf("total win mult expected 2.0, got %f", st.Mult.TotalWinMult)
	}
}

func TestMergeSpinRecorder(t *testing.T) {
	a, _ := NewSpinRecorder("g", 1, []int{100}, 0, 0)
	b, _ := NewSpinRecorder("g", 1, []int{100}, 0, 0)
	a.Record(RoundRecord{Bet: 100, TotalWin: 100, BaseWin: 100})
	b.Record(RoundRecord{Bet: 100})

	merged, err := MergeSpinRecorder([]*SpinRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Basic.Rounds != 2 || merged.Basic.TotalBet != 200 || merged.Basic.TotalWin != 100 {
		t.Fatalf("merged totals mismatch: %+v", merged.Basic)
	}

	other, _ := NewSpinRecorder("other", 1, []int{100}, 0, 0)
	if _, err := MergeSpinRecorder([]*SpinRecorder{a, other}); err == nil {
		t.Fatalf("different game name must be rejected")
	}
}

func TestRecordWithPlayer(t *testing.T) {
	// 初始 1 注本金：輸一局即破產
	rec, err := NewSpinRecorder("g", 1, []int{100}, 1, 0)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if rec.Player.Balance != 100 {
		t.Fatalf("init balance expected 100, got %d", rec.Player.Balance)
	}

	leave := rec.RecordWithPlayer(RoundRecord{Bet: 100})
	if !leave || !rec.Player.Bust {
		t.Fatalf("losing the bankroll must stop the player: %+v", rec.Player)
	}
	// 破產後不得再入帳
	if again := rec.RecordWithPlayer(RoundRecord{Bet: 100}); !again {
		t.Fatalf("broke player must stay stopped")
	}
	if rec.Basic.Rounds != 1 {
		t.Fatalf("rounds after bust mismatch: %d", rec.Basic.Rounds)
	}
}

func TestRecordWithPlayerCashout(t *testing.T) {
	rec, err := NewSpinRecorder("g", 1, []int{100}, 1, 0)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	// 離場線為 3 倍本金：100 - 100 + 500 = 500 >= 300
	leave := rec.RecordWithPlayer(RoundRecord{Bet: 100, TotalWin: 500, BaseWin: 500})
	if !leave || !rec.Player.Cashout {
		t.Fatalf("cashout line must stop the player: %+v", rec.Player)
	}
	if rec.Player.MaxBalance != 500 {
		t.Fatalf("max balance mismatch: %d", rec.Player.MaxBalance)
	}
}

func TestRoundLoggerWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewRoundLogger(&buf, 8)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.Record(RoundEvent{RoundID: "r1", GameID: 7001, Mode: "base_game", Bet: "1.00", TotalWin: "0.00", Cascades: 1, Timestamp: 1})
	l.Record(RoundEvent{RoundID: "r2", GameID: 7001, Mode: "free_spins", Bet: "1.00", TotalWin: "5.00", FreeSpins: 6, Cascades: 2, Timestamp: 2})
	l.Close()

	zr, err := zstd.NewReader(&buf)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 events, got %d", len(lines))
	}
	var ev RoundEvent
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.RoundID != "r2" || ev.FreeSpins != 6 || ev.TotalWin != "5.00" {
		t.Fatalf("event mismatch: %+v", ev)
	}
}

func TestRoundLoggerDropsWhenClosed(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewRoundLogger(&buf, 1)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.Close()
	l.Record(RoundEvent{RoundID: "late"})
	if l.Dropped() != 1 {
		t.Fatalf("record after close must drop: %d", l.Dropped())
	}
	if _, err := NewRoundLogger(nil, 1); err == nil {
		t.Fatalf("nil writer must be rejected")
	}
}

func TestRoundLoggerConcurrentRecordClose(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewRoundLogger(&buf, 4)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				l.Record(RoundEvent{RoundID: "r", GameID: 7001})
			}
		}()
	}
	l.Close()
	wg.Wait()

	// 關閉後投遞只能丟棄，絕不 panic
	before := l.Dropped()
	l.Record(RoundEvent{RoundID: "late"})
	if l.Dropped() != before+1 {
		t.Fatalf("record after close must count as dropped")
	}
	l.Close() // 重複關閉必須安全
}
