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
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/megalab/errs"
)

// RoundEvent 是對外送出的單局摘要事件（JSONL，一局一行）。
// 金額欄位為十進位字串，由呼叫端自引擎結果帶入。
type RoundEvent struct {
	RoundID    string `json:"round_id"`
	GameID     int    `json:"gid"`
	Mode       string `json:"mode"`
	Bet        string `json:"bet"`
	TotalWin   string `json:"win"`
	ScatterWin string `json:"scatter_win,omitempty"`
	FeatureWin string `json:"feature_win,omitempty"`
	FreeSpins  int    `json:"free_spins,omitempty"`
	Cascades   int    `json:"cascades"`
	MaxWinHit  bool   `json:"max_win_hit,omitempty"`
	Timestamp  int64  `json:"ts"`
}

// RoundLogger 是 fire-and-forget 的回合存證通道。
//
// 合約（best-effort）：
//   - Record 絕不阻塞、絕不回傳錯誤：佇列滿了就丟（dropped 計數可觀測）。
//   - 事件經 JSONL 編碼後以 zstd 壓縮寫入底層 Writer，由單一背景 goroutine 落盤。
//   - Close 會吃完殘餘佇列並 flush 壓縮器；Close 之後的 Record 直接丟棄。
type RoundLogger struct {
	mu      sync.Mutex // 串接投遞與關閉，避免對已關閉通道 send
	closed  bool
	ch      chan RoundEvent
	zw      *zstd.Encoder
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewRoundLogger 以指定容量建立回合存證通道並啟動落盤 goroutine。
func NewRoundLogger(w io.Writer, queue int) (*RoundLogger, error) {
	if w == nil {
		return nil, errs.NewFatal("round logger writer is nil")
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, errs.Wrap(err, "create zstd writer failed")
	}
	l := &RoundLogger{
		ch:   make(chan RoundEvent, max(1, queue)),
		zw:   zw,
		done: make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Record 投遞一筆事件；滿了直接丟棄。任何情況下都不阻塞、不影響本局結算。
func (l *RoundLogger) Record(ev RoundEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.ch <- ev:
	default:
		l.dropped.Add(1)
	}
}

// Dropped 回傳被丟棄的事件數（觀測用）。
func (l *RoundLogger) Dropped() int64 {
	return l.dropped.Load()
}

// Close 停止收件、寫完殘餘佇列並 flush 壓縮流。可安全重複呼叫。
func (l *RoundLogger) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.ch)
		l.mu.Unlock()
		<-l.done
	})
}

func (l *RoundLogger) run() {
	defer close(l.done)
	enc := json.NewEncoder(l.zw)
	for ev := range l.ch {
		// 編碼失敗只能丟；存證是 best-effort，不回壓資料面
		if err := enc.Encode(ev); err != nil {
			l.dropped.Add(1)
		}
	}
	_ = l.zw.Close()
}
