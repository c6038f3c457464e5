package catalog

import (
	"testing"
	"testing/fstest"
)

const miniYAML = `
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

func miniFS() fstest.MapFS {
	return fstest.MapFS{
		"unitmini.yaml": &fstest.MapFile{Data: []byte(miniYAML)},
	}
}

func TestCatalogRegisterAndLookup(t *testing.T) {
	c, err := New(miniFS())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if err := c.Register(Entry{GID: 7001, Name: "UnitMini", ConfigName: "unitmini.yaml"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, ok := c.GetByID(7001); !ok {
		t.Fatalf("lookup by id failed")
	}
	// 名稱查詢大小寫不敏感
	if _, ok := c.GetByName("UNITMINI"); !ok {
		t.Fatalf("lookup by name must be case-insensitive")
	}
	if _, ok := c.GetByName("nope"); ok {
		t.Fatalf("unknown name must miss")
	}
	if ids := c.IDs(); len(ids) != 1 || ids[0] != 7001 {
		t.Fatalf("ids mismatch: %v", ids)
	}

	gs, err := c.GameSettingById(7001)
	if err != nil {
		t.Fatalf("game setting: %v", err)
	}
	if gs.GameName != "UnitMini" || len(gs.BetUnits) != 1 {
		t.Fatalf("parsed setting mismatch: %+v", gs)
	}
	if _, err := c.GameSettingById(9999); err == nil {
		t.Fatalf("unknown id must error")
	}

	c.Freeze()
	if !c.IsFrozen() {
		t.Fatalf("catalog must be frozen")
	}
	if err := c.Register(Entry{GID: 7002, Name: "x", ConfigName: "unitmini.yaml"}); err == nil {
		t.Fatalf("register after freeze must be rejected")
	}
}

func TestCatalogRegisterValidation(t *testing.T) {
	c, err := New(miniFS())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	if err := c.Register(Entry{GID: 1, Name: "", ConfigName: "unitmini.yaml"}); err == nil {
		t.Fatalf("empty name must be rejected")
	}
	if err := c.Register(Entry{GID: 1, Name: "a", ConfigName: "missing.yaml"}); err == nil {
		t.Fatalf("missing config must be rejected")
	}
	if err := c.Register(Entry{GID: 1, Name: "a", ConfigName: "sub/x.yaml"}); err == nil {
		t.Fatalf("pathy config name must be rejected")
	}
	if err := c.Register(Entry{GID: 1, Name: "a", ConfigName: "unitmini.txt"}); err == nil {
		t.Fatalf("non yaml/json config must be rejected")
	}

	if err := c.Register(Entry{GID: 1, Name: "a", ConfigName: "unitmini.yaml"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register(Entry{GID: 1, Name: "b", ConfigName: "unitmini.yaml"}); err == nil {
		t.Fatalf("duplicate id must be rejected")
	}
}

func TestCatalogRejectsNestedFS(t *testing.T) {
	nested := fstest.MapFS{
		"sub/game.yaml": &fstest.MapFile{Data: []byte(miniYAML)},
	}
	if _, err := New(nested); err == nil {
		t.Fatalf("nested config FS must be rejected")
	}
}

func TestCatalogDuplicateConfigAcrossFS(t *testing.T) {
	a := miniFS()
	b := miniFS()
	if _, err := New(a, b); err == nil {
		t.Fatalf("duplicate config name across sources must be rejected")
	}
}
