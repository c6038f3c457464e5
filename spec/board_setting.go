package spec

import (
	"fmt"

	"github.com/zintix-labs/megalab/errs"
)

// BoardSetting 描述盤面形狀的設定。
//
// 兩種變體：
//   - 固定高度：Rows > 0，所有軸同高。
//   - Megaways：Megaways = true，每軸高度於每局自 [MinRows[i], MaxRows[i]] 抽出。
//
// Fields:
//   - Columns: 盤面軸數
//   - Rows: 固定高度模式的每軸格數
//   - MinRows/MaxRows: Megaways 模式的每軸高度範圍（長度須等於 Columns）
type BoardSetting struct {
	Columns  int   `yaml:"columns"   json:"columns"`
	Rows     int   `yaml:"rows"      json:"rows"`
	Megaways bool  `yaml:"megaways"  json:"megaways"`
	MinRows  []int `yaml:"min_rows"  json:"min_rows"`
	MaxRows  []int `yaml:"max_rows"  json:"max_rows"`

	MaxCells int `yaml:"-" json:"-"` // 盤面格數上限（buffer 預估用）
	initFlag bool
}

// Init 檢查不合法的設定
func (bs *BoardSetting) Init() error {
	// 檢查初始化旗標
	if bs.initFlag {
		return nil
	}
	if bs.Columns <= 0 {
		return errs.NewFatal(fmt.Sprintf("invalid board columns: %d", bs.Columns))
	}

	if bs.Megaways {
		if len(bs.MinRows) != bs.Columns || len(bs.MaxRows) != bs.Columns {
			return errs.NewFatal("megaways board: len(min_rows)/len(max_rows) must equal columns")
		}
		bs.MaxCells = 0
		for i := 0; i < bs.Columns; i++ {
			if bs.MinRows[i] < 1 || bs.MaxRows[i] < bs.MinRows[i] {
				return errs.NewFatal(fmt.Sprintf("megaways board: invalid row range at col %d: [%d,%d]", i, bs.MinRows[i], bs.MaxRows[i]))
			}
			bs.MaxCells += bs.MaxRows[i]
		}
	} else {
		if bs.Rows <= 0 {
			return errs.NewFatal(fmt.Sprintf("invalid board rows: %d", bs.Rows))
		}
		if len(bs.MinRows) != 0 || len(bs.MaxRows) != 0 {
			return errs.NewFatal("fixed board: min_rows/max_rows must be empty")
		}
		bs.MaxCells = bs.Columns * bs.Rows
	}

	bs.initFlag = true
	return nil
}

// HeightRange 回傳第 col 軸的高度範圍。固定高度模式回傳 (Rows, Rows)。
func (bs *BoardSetting) HeightRange(col int) (min, max int) {
	if bs.Megaways {
		return bs.MinRows[col], bs.MaxRows[col]
	}
	return bs.Rows, bs.Rows
}
