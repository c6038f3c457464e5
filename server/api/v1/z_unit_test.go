package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/megalab"
	"github.com/zintix-labs/megalab/recorder"
	"github.com/zintix-labs/megalab/sdk/core"
	"github.com/zintix-labs/megalab/server/svrcfg"
)

const spinTestYAML = `
game_name: HandlerMini
game_id: 7101
bet_units: [100]
max_win_mult: 5000
buy_cost_mult: 100
symbol_setting:
  symbol_used: ["W1", "C1", "M1", "H1", "L1"]
  pay_table:
    - [0, 0, 0]
    - [0, 0, 0]
    - [0, 0, 0]
    - [0, 100, 500]
    - [0, 50, 100]
board_setting:
  columns: 3
  rows: 3
  megaways: false
strip_setting:
  libraries:
    - mode: StripBase
      reels:
        - [36, 45, 18, 45, 36, 18, 45, 36, 45, 18]
        - [45, 36, 27, 18, 45, 36, 45, 18, 36, 45]
        - [45, 45, 36, 18, 36, 45, 18, 45, 36, 18]
top_reel_setting:
  enabled: false
mult_setting:
  standard: {values: [2, 3, 5], weights: [70, 25, 5]}
  ante: {values: [2, 3, 5], weights: [70, 25, 5]}
  free_low: {values: [2, 3, 5], weights: [70, 25, 5]}
  free_high: {values: [2], weights: [1]}
  free_high_threshold: 20
  wild_collect: {enabled: false, min_col: 0, max_col: 0}
scatter_setting:
  tiers:
    - {count: 3, spins: 6, pay_mult: 200}
    - {count: 4, spins: 10, pay_mult: 500}
  retrigger_count: 3
  retrigger_spins: 4
`

func spinTestCfg(t *testing.T, rec *recorder.RoundLogger) *svrcfg.SvrCfg {
	t.Helper()
	cfg := fstest.MapFS{
		"handlermini.yaml": &fstest.MapFile{Data: []byte(spinTestYAML)},
	}
	lab, err := megalab.NewAuto(core.Default(), []fs.FS{cfg}, nil)
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return &svrcfg.SvrCfg{SlotBufSize: 1, Megalab: lab, Recorder: rec}
}

func TestSpinHandlerRecordsRounds(t *testing.T) {
	var buf bytes.Buffer
	rec, err := recorder.NewRoundLogger(&buf, 16)
	if err != nil {
		t.Fatalf("new round logger: %v", err)
	}

	h, err := NewSpinHandler(spinTestCfg(t, rec))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	q := httptest.NewRequest(http.MethodGet,
		"/v1/spin?uid=u1&game=HandlerMini&gid=7101&base_bet=1.00&total_bet=1.00", nil)
	w := httptest.NewRecorder()
	h.Spin(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("spin status %d: %s", w.Code, w.Body.String())
	}

	rec.Close()
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
	if len(lines) != 1 {
		t.Fatalf("expected 1 recorded round, got %d", len(lines))
	}
	var ev recorder.RoundEvent
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.GameID != 7101 || ev.RoundID == "" || ev.Bet == "" {
		t.Fatalf("event mismatch: %+v", ev)
	}
}

func TestSpinHandlerWithoutRecorder(t *testing.T) {
	h, err := NewSpinHandler(spinTestCfg(t, nil))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	q := httptest.NewRequest(http.MethodGet,
		"/v1/spin?uid=u1&game=HandlerMini&gid=7101&base_bet=1.00&total_bet=1.00", nil)
	w := httptest.NewRecorder()
	h.Spin(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("spin status %d: %s", w.Code, w.Body.String())
	}
}
