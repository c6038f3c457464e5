package spec

import (
	"fmt"

	"github.com/zintix-labs/megalab/errs"
)

// StripMode 表示一局使用哪一套輪帶庫。
type StripMode int

const (
	StripModeNone StripMode = iota
	StripBase
	StripAnte
	StripFree
	StripBuy

	stripModeCount
)

var stripModeMap = map[string]StripMode{
	"StripBase": StripBase,
	"StripAnte": StripAnte,
	"StripFree": StripFree,
	"StripBuy":  StripBuy,
}

// ParseStripMode 解析設定檔中的輪帶庫模式字串。
func ParseStripMode(s string) (StripMode, bool) {
	m, ok := stripModeMap[s]
	return m, ok
}

// StripLibrary 一套輪帶庫：每軸一條輪帶，對應一種遊戲模式。
//
// 輪帶是循環帶：盤面生成自 |seed| mod len 的起點開始連續取符號，
// 同一局內的補落沿用每軸游標繼續取（不重置）。
type StripLibrary struct {
	ModeStr string     `yaml:"mode"  json:"mode"`
	Reels   [][]Symbol `yaml:"reels" json:"reels"`

	Mode StripMode `yaml:"-" json:"-"`
}

// StripSetting 各模式輪帶庫的集合。
//
// StripBase 為必備；StripAnte/StripFree/StripBuy 缺省時回退至 StripBase。
type StripSetting struct {
	Libraries []StripLibrary `yaml:"libraries" json:"libraries"`

	byMode   [stripModeCount]*StripLibrary
	initFlag bool
}

// Init 解析模式字串、驗證每條輪帶的符號皆屬於符號表。
// 輪帶引用未知符號或出現空輪帶皆為 Fatal：這代表設定檔毀損，不能靜默跳過。
func (ss *StripSetting) Init(sym *SymbolSetting, board *BoardSetting) error {
	if ss.initFlag {
		return nil
	}
	if len(ss.Libraries) == 0 {
		return errs.NewFatal("strip_setting: no libraries")
	}

	for i := range ss.Libraries {
		lib := &ss.Libraries[i]
		mode, ok := ParseStripMode(lib.ModeStr)
		if !ok {
			return errs.NewFatal(fmt.Sprintf("strip_setting: invalid mode %q", lib.ModeStr))
		}
		lib.Mode = mode
		if ss.byMode[mode] != nil {
			return errs.NewFatal(fmt.Sprintf("strip_setting: duplicate library for mode %q", lib.ModeStr))
		}

		if len(lib.Reels) != board.Columns {
			return errs.NewFatal(fmt.Sprintf("strip_setting: mode %q has %d reels, board has %d columns", lib.ModeStr, len(lib.Reels), board.Columns))
		}
		for col, reel := range lib.Reels {
			if len(reel) == 0 {
				return errs.NewFatal(fmt.Sprintf("strip_setting: mode %q col %d has empty reel", lib.ModeStr, col))
			}
			// 每軸輪帶至少要能鋪滿該軸最大高度
			_, maxRows := board.HeightRange(col)
			if len(reel) < maxRows {
				return errs.NewFatal(fmt.Sprintf("strip_setting: mode %q col %d reel shorter than max height %d", lib.ModeStr, col, maxRows))
			}
			for pos, s := range reel {
				if !sym.Contains(s) {
					return errs.NewFatal(fmt.Sprintf("strip_setting: mode %q col %d pos %d unknown symbol %d", lib.ModeStr, col, pos, s))
				}
			}
		}
		ss.byMode[mode] = lib
	}

	if ss.byMode[StripBase] == nil {
		return errs.NewFatal("strip_setting: StripBase library is required")
	}

	ss.initFlag = true
	return nil
}

// Get 回傳指定模式的輪帶庫；該模式沒有專屬輪帶時回退至 StripBase。
func (ss *StripSetting) Get(m StripMode) *StripLibrary {
	if m > StripModeNone && m < stripModeCount {
		if lib := ss.byMode[m]; lib != nil {
			return lib
		}
	}
	return ss.byMode[StripBase]
}
