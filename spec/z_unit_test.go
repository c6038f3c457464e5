package spec

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncMoney(t *testing.T) {
	got := TruncMoney(decimal.RequireFromString("1.239"))
	if !got.Equal(decimal.RequireFromString("1.23")) {
		t.Fatalf("expected 1.23, got %s", got)
	}
	over := MaxMoney.Add(decimal.NewFromInt(1))
	if !TruncMoney(over).Equal(MaxMoney) {
		t.Fatalf("expected clamp to MaxMoney, got %s", TruncMoney(over))
	}
	neg := decimal.RequireFromString("-0.019")
	if !TruncMoney(neg).Equal(decimal.RequireFromString("-0.01")) {
		t.Fatalf("expected -0.01, got %s", TruncMoney(neg))
	}
}

func newTestSymbolSetting(t *testing.T) *SymbolSetting {
	t.Helper()
	ss := &SymbolSetting{
		SymbolUsedStr: []string{"W1", "C1", "M1", "H1", "L1"},
		PayTable: [][]int64{
			{0, 0, 0},
			{0, 0, 0},
			{0, 0, 0},
			{0, 100, 500},
			{0, 50, 100},
		},
	}
	if err := ss.Init(); err != nil {
		t.Fatalf("symbol setting init: %v", err)
	}
	return ss
}

func TestSymbolSettingPayMult(t *testing.T) {
	ss := newTestSymbolSetting(t)

	if got := ss.PayMult(H1, 2); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("H1 x2 expected 1, got %s", got)
	}
	if got := ss.PayMult(H1, 3); !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("H1 x3 expected 5, got %s", got)
	}
	// 超出表長取最後一欄
	if got := ss.PayMult(H1, 9); !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("H1 x9 expected 5, got %s", got)
	}
	if got := ss.PayMult(L1, 3); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("L1 x3 expected 1, got %s", got)
	}
	if got := ss.PayMult(H9, 3); !got.IsZero() {
		t.Fatalf("unknown symbol expected 0, got %s", got)
	}
	if got := ss.PayMult(H1, 0); !got.IsZero() {
		t.Fatalf("cols=0 expected 0, got %s", got)
	}
	if !ss.Contains(W1) || ss.Contains(W2) {
		t.Fatalf("Contains mismatch")
	}
}

func TestSymbolSettingInitErrors(t *testing.T) {
	bad := &SymbolSetting{
		SymbolUsedStr: []string{"XX"},
		PayTable:      [][]int64{{0}},
	}
	if err := bad.Init(); err == nil {
		t.Fatalf("expected unknown symbol error")
	}

	ragged := &SymbolSetting{
		SymbolUsedStr: []string{"H1", "L1"},
		PayTable:      [][]int64{{0, 100}, {0}},
	}
	if err := ragged.Init(); err == nil {
		t.Fatalf("expected inconsistent pay table error")
	}

	mismatch := &SymbolSetting{
		SymbolUsedStr: []string{"H1", "L1"},
		PayTable:      [][]int64{{0, 100}},
	}
	if err := mismatch.Init(); err == nil {
		t.Fatalf("expected len mismatch error")
	}
}

func TestScatterSettingTierFor(t *testing.T) {
	ss := &ScatterSetting{
		Tiers: []ScatterTier{
			{Count: 3, Spins: 6, PayMult: 200},
			{Count: 5, Spins: 10, PayMult: 500},
		},
		RetriggerCount: 3,
		RetriggerSpins: 4,
	}
	if err := ss.Init(); err != nil {
		t.Fatalf("scatter init: %v", err)
	}

	if tier := ss.TierFor(2); tier != nil {
		t.Fatalf("count=2 expected no tier")
	}
	if tier := ss.TierFor(4); tier == nil || tier.Spins != 6 {
		t.Fatalf("count=4 expected first tier")
	}
	if tier := ss.TierFor(9); tier == nil || tier.Spins != 10 {
		t.Fatalf("count=9 expected top tier")
	}
	if !ss.Tiers[0].Pay.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("tier pay not converted: %s", ss.Tiers[0].Pay)
	}
	if ss.CanRetrigger(2) || !ss.CanRetrigger(3) {
		t.Fatalf("retrigger threshold mismatch")
	}
}

func TestScatterSettingInitErrors(t *testing.T) {
	desc := &ScatterSetting{
		Tiers: []ScatterTier{{Count: 5, Spins: 1}, {Count: 3, Spins: 1}},
	}
	if err := desc.Init(); err == nil {
		t.Fatalf("expected ascending tiers error")
	}
	neg := &ScatterSetting{RetriggerCount: -1}
	if err := neg.Init(); err == nil {
		t.Fatalf("expected negative retrigger error")
	}
}

func TestBoardSettingInit(t *testing.T) {
	fixed := &BoardSetting{Columns: 3, Rows: 4}
	if err := fixed.Init(); err != nil {
		t.Fatalf("fixed board init: %v", err)
	}
	if fixed.MaxCells != 12 {
		t.Fatalf("expected 12 max cells, got %d", fixed.MaxCells)
	}
	if min, max := fixed.HeightRange(1); min != 4 || max != 4 {
		t.Fatalf("fixed height range got [%d,%d]", min, max)
	}

	mega := &BoardSetting{Columns: 2, Megaways: true, MinRows: []int{2, 3}, MaxRows: []int{5, 7}}
	if err := mega.Init(); err != nil {
		t.Fatalf("megaways board init: %v", err)
	}
	if mega.MaxCells != 12 {
		t.Fatalf("expected 12 max cells, got %d", mega.MaxCells)
	}
	if min, max := mega.HeightRange(1); min != 3 || max != 7 {
		t.Fatalf("megaways height range got [%d,%d]", min, max)
	}

	short := &BoardSetting{Columns: 3, Megaways: true, MinRows: []int{2}, MaxRows: []int{5}}
	if err := short.Init(); err == nil {
		t.Fatalf("expected row range length error")
	}
	inverted := &BoardSetting{Columns: 1, Megaways: true, MinRows: []int{5}, MaxRows: []int{2}}
	if err := inverted.Init(); err == nil {
		t.Fatalf("expected inverted range error")
	}
	mixed := &BoardSetting{Columns: 1, Rows: 3, MinRows: []int{1}}
	if err := mixed.Init(); err == nil {
		t.Fatalf("expected fixed board with min_rows error")
	}
}

func TestStripSettingFallback(t *testing.T) {
	sym := newTestSymbolSetting(t)
	board := &BoardSetting{Columns: 2, Rows: 2}
	if err := board.Init(); err != nil {
		t.Fatalf("board init: %v", err)
	}
	reels := [][]Symbol{{H1, L1, C1}, {L1, H1, C1}}

	ss := &StripSetting{Libraries: []StripLibrary{{ModeStr: "StripBase", Reels: reels}}}
	if err := ss.Init(sym, board); err != nil {
		t.Fatalf("strip init: %v", err)
	}
	base := ss.Get(StripBase)
	if base == nil || base.Mode != StripBase {
		t.Fatalf("base library missing")
	}
	// 缺省模式回退至 base
	if ss.Get(StripAnte) != base || ss.Get(StripFree) != base || ss.Get(StripBuy) != base {
		t.Fatalf("missing modes must fall back to base")
	}
	if ss.Get(StripModeNone) != base {
		t.Fatalf("none mode must fall back to base")
	}
}

func TestStripSettingInitErrors(t *testing.T) {
	sym := newTestSymbolSetting(t)
	board := &BoardSetting{Columns: 2, Rows: 2}
	if err := board.Init(); err != nil {
		t.Fatalf("board init: %v", err)
	}
	reels := [][]Symbol{{H1, L1, C1}, {L1, H1, C1}}

	noBase := &StripSetting{Libraries: []StripLibrary{{ModeStr: "StripFree", Reels: reels}}}
	if err := noBase.Init(sym, board); err == nil {
		t.Fatalf("expected missing base error")
	}

	badMode := &StripSetting{Libraries: []StripLibrary{{ModeStr: "StripX", Reels: reels}}}
	if err := badMode.Init(sym, board); err == nil {
		t.Fatalf("expected invalid mode error")
	}

	shortReel := &StripSetting{Libraries: []StripLibrary{{ModeStr: "StripBase", Reels: [][]Symbol{{H1}, {L1, H1}}}}}
	if err := shortReel.Init(sym, board); err == nil {
		t.Fatalf("expected short reel error")
	}

	unknown := &StripSetting{Libraries: []StripLibrary{{ModeStr: "StripBase", Reels: [][]Symbol{{H1, H9}, {L1, H1}}}}}
	if err := unknown.Init(sym, board); err == nil {
		t.Fatalf("expected unknown symbol error")
	}
}

func TestTopReelSettingInit(t *testing.T) {
	sym := newTestSymbolSetting(t)
	board := &BoardSetting{Columns: 4, Rows: 3}
	if err := board.Init(); err != nil {
		t.Fatalf("board init: %v", err)
	}

	ts := &TopReelSetting{Enabled: true, CoveredCols: []int{1, 2, 3}, Strip: []Symbol{H1, L1, C1}}
	if err := ts.Init(sym, board); err != nil {
		t.Fatalf("top reel init: %v", err)
	}
	if ts.MinCovered != 1 || ts.MaxCovered != 3 || ts.VisibleCount() != 3 {
		t.Fatalf("covered range mismatch: [%d,%d] visible=%d", ts.MinCovered, ts.MaxCovered, ts.VisibleCount())
	}
	if ts.Covers(0) || !ts.Covers(2) {
		t.Fatalf("Covers mismatch")
	}

	gapped := &TopReelSetting{Enabled: true, CoveredCols: []int{1, 3}, Strip: []Symbol{H1}}
	if err := gapped.Init(sym, board); err == nil {
		t.Fatalf("expected contiguity error")
	}
	out := &TopReelSetting{Enabled: true, CoveredCols: []int{3, 4}, Strip: []Symbol{H1}}
	if err := out.Init(sym, board); err == nil {
		t.Fatalf("expected out of range error")
	}

	off := &TopReelSetting{Enabled: false}
	if err := off.Init(sym, board); err != nil {
		t.Fatalf("disabled top reel init: %v", err)
	}
	if off.VisibleCount() != 0 || off.Covers(1) {
		t.Fatalf("disabled top reel must not cover")
	}
}

func TestMultSettingProfile(t *testing.T) {
	board := &BoardSetting{Columns: 3, Rows: 3}
	if err := board.Init(); err != nil {
		t.Fatalf("board init: %v", err)
	}
	ms := &MultSetting{
		Standard:          MultProfile{Values: []int{2}, Weights: []int{1}},
		Ante:              MultProfile{Values: []int{3}, Weights: []int{1}},
		FreeLow:           MultProfile{Values: []int{5}, Weights: []int{1}},
		FreeHigh:          MultProfile{Values: []int{7}, Weights: []int{1}},
		FreeHighThreshold: 20,
	}
	if err := ms.Init(board); err != nil {
		t.Fatalf("mult init: %v", err)
	}

	if ms.Profile(MultStandard, 0) != &ms.Standard {
		t.Fatalf("standard profile mismatch")
	}
	if ms.Profile(MultAnte, 99) != &ms.Ante {
		t.Fatalf("ante profile mismatch")
	}
	if ms.Profile(MultFreeLow, 19) != &ms.FreeLow {
		t.Fatalf("below threshold expected free_low")
	}
	if ms.Profile(MultFreeLow, 20) != &ms.FreeHigh {
		t.Fatalf("at threshold expected free_high")
	}
	if got := ms.Standard.ValueBySeed(0); got != 2 {
		t.Fatalf("seed 0 expected value 2, got %d", got)
	}

	badWC := &MultSetting{
		Standard: MultProfile{Values: []int{2}, Weights: []int{1}},
		Ante:     MultProfile{Values: []int{2}, Weights: []int{1}},
		FreeLow:  MultProfile{Values: []int{2}, Weights: []int{1}},
		FreeHigh: MultProfile{Values: []int{2}, Weights: []int{1}},
		WildCollect: WildCollectSetting{
			Enabled: true, MinCol: 2, MaxCol: 5,
		},
	}
	if err := badWC.Init(board); err == nil {
		t.Fatalf("expected wild_collect range error")
	}
}

const testYAML = `
game_name: UnitMini
game_id: 7001
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

func TestGetGameSettingByYAML(t *testing.T) {
	gs, err := GetGameSettingByYAML([]byte(testYAML))
	if err != nil {
		t.Fatalf("yaml parse: %v", err)
	}
	if gs.GameName != "UnitMini" || gs.GameID != 7001 {
		t.Fatalf("identity mismatch: %s/%d", gs.GameName, gs.GameID)
	}
	if len(gs.BetUnits) != 1 || gs.BetUnits[0] != 100 {
		t.Fatalf("bet units mismatch: %v", gs.BetUnits)
	}
	if !gs.BuyEnabled() {
		t.Fatalf("buy_cost_mult 100 must enable buy")
	}
	if got := gs.SymbolSetting.PayMult(H1, 3); !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("H1 x3 expected 5, got %s", got)
	}
	// 數字輪帶要解析回符號代碼
	base := gs.StripSetting.Get(StripBase)
	if base.Reels[0][0] != H1 || base.Reels[1][2] != W1 {
		t.Fatalf("reel symbols not decoded: %v", base.Reels[0][:3])
	}
	if gs.StripSetting.Get(StripFree) != base {
		t.Fatalf("free strips must fall back to base")
	}

	if _, err := GetGameSettingByYAML([]byte("game_name: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
	if _, err := GetGameSettingByYAML([]byte("game_name: x")); err == nil {
		t.Fatalf("expected init error for incomplete setting")
	}
}
