package spec

import (
	"fmt"

	"github.com/zintix-labs/megalab/errs"
)

// TopReelSetting 描述頂部水平輪帶（Top Reel）的設定。
//
// 頂部輪帶覆蓋一段連續的軸，為被覆蓋的軸各貢獻一個額外可命中的格子。
// 可見格數等於被覆蓋軸數；每格符號自 Strip 以種子抽出，
// 命中後該格「原地換新」而不是落下遞補。
type TopReelSetting struct {
	Enabled     bool     `yaml:"enabled"      json:"enabled"`
	CoveredCols []int    `yaml:"covered_cols" json:"covered_cols"`
	Strip       []Symbol `yaml:"strip"        json:"strip"`

	MinCovered int `yaml:"-" json:"-"`
	MaxCovered int `yaml:"-" json:"-"`
	initFlag   bool
}

// Init 檢查覆蓋範圍必須連續且落在盤面內，輪帶符號皆屬於符號表。
func (ts *TopReelSetting) Init(sym *SymbolSetting, board *BoardSetting) error {
	if ts.initFlag {
		return nil
	}
	if !ts.Enabled {
		ts.initFlag = true
		return nil
	}

	if len(ts.CoveredCols) == 0 {
		return errs.NewFatal("top_reel_setting: enabled but covered_cols is empty")
	}
	ts.MinCovered = ts.CoveredCols[0]
	ts.MaxCovered = ts.CoveredCols[len(ts.CoveredCols)-1]
	for i, col := range ts.CoveredCols {
		if col < 0 || col >= board.Columns {
			return errs.NewFatal(fmt.Sprintf("top_reel_setting: covered col %d out of board range", col))
		}
		// 覆蓋範圍必須是嚴格遞增的連續區段
		if i > 0 && col != ts.CoveredCols[i-1]+1 {
			return errs.NewFatal("top_reel_setting: covered_cols must be contiguous ascending")
		}
	}

	if len(ts.Strip) == 0 {
		return errs.NewFatal("top_reel_setting: enabled but strip is empty")
	}
	for pos, s := range ts.Strip {
		if !sym.Contains(s) {
			return errs.NewFatal(fmt.Sprintf("top_reel_setting: strip pos %d unknown symbol %d", pos, s))
		}
	}

	ts.initFlag = true
	return nil
}

// VisibleCount 回傳頂部輪帶的可見格數（等於被覆蓋軸數）。
func (ts *TopReelSetting) VisibleCount() int {
	if !ts.Enabled {
		return 0
	}
	return len(ts.CoveredCols)
}

// Covers 回報第 col 軸是否在頂部輪帶覆蓋範圍內。
func (ts *TopReelSetting) Covers(col int) bool {
	return ts.Enabled && col >= ts.MinCovered && col <= ts.MaxCovered
}
