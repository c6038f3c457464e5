package spec

import (
	"fmt"

	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/sdk/sampler"
)

// MultProfileKind 倍數權重組的選用時機。
type MultProfileKind int

const (
	MultStandard MultProfileKind = iota // 主遊戲
	MultAnte                            // Ante 模式
	MultFreeLow                         // 免費遊戲（累積倍數低於門檻）
	MultFreeHigh                        // 免費遊戲（累積倍數達門檻後壓低高倍權重）

	multProfileCount
)

// MultProfile 一組倍數值的權重表。
// 倍數符號落地時攜帶的倍數值由此表以種子抽出。
type MultProfile struct {
	Values  []int `yaml:"values"  json:"values"`
	Weights []int `yaml:"weights" json:"weights"`

	LUT sampler.LUT `yaml:"-" json:"-"`
}

func (mp *MultProfile) init(name string) error {
	if len(mp.Values) == 0 {
		return errs.NewFatal(fmt.Sprintf("mult_setting: profile %s has no values", name))
	}
	if len(mp.Values) != len(mp.Weights) {
		return errs.NewFatal(fmt.Sprintf("mult_setting: profile %s len(values) != len(weights)", name))
	}
	for _, v := range mp.Values {
		if v < 1 {
			return errs.NewFatal(fmt.Sprintf("mult_setting: profile %s has mult value < 1", name))
		}
	}
	mp.LUT = sampler.BuildLUT(mp.Weights)
	return nil
}

// ValueBySeed 以種子從權重表抽一個倍數值。
func (mp *MultProfile) ValueBySeed(seed int) int {
	return mp.Values[mp.LUT.PickBySeed(seed)]
}

// WildCollectSetting 免費遊戲中 Wild 倍數收集規則。
//
// 哪些軸上的 Wild 參與收集、是否收集，依遊戲主題的產品規則而異，
// 因此做成設定而非寫死在邏輯裡。
type WildCollectSetting struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	MinCol  int  `yaml:"min_col" json:"min_col"`
	MaxCol  int  `yaml:"max_col" json:"max_col"`
}

// MultSetting 倍數符號相關設定：四組權重表、免費遊戲高低檔門檻、Wild 收集規則。
type MultSetting struct {
	Standard MultProfile `yaml:"standard"  json:"standard"`
	Ante     MultProfile `yaml:"ante"      json:"ante"`
	FreeLow  MultProfile `yaml:"free_low"  json:"free_low"`
	FreeHigh MultProfile `yaml:"free_high" json:"free_high"`

	// 免費遊戲累積倍數達此值後改用 FreeHigh 權重表
	FreeHighThreshold int `yaml:"free_high_threshold" json:"free_high_threshold"`

	WildCollect WildCollectSetting `yaml:"wild_collect" json:"wild_collect"`

	initFlag bool
}

// Init 建立各權重表的 LUT 並檢查設定。
func (ms *MultSetting) Init(board *BoardSetting) error {
	if ms.initFlag {
		return nil
	}
	if err := ms.Standard.init("standard"); err != nil {
		return err
	}
	if err := ms.Ante.init("ante"); err != nil {
		return err
	}
	if err := ms.FreeLow.init("free_low"); err != nil {
		return err
	}
	if err := ms.FreeHigh.init("free_high"); err != nil {
		return err
	}
	if ms.FreeHighThreshold < 0 {
		return errs.NewFatal("mult_setting: free_high_threshold must be >= 0")
	}
	if ms.WildCollect.Enabled {
		wc := ms.WildCollect
		if wc.MinCol < 0 || wc.MaxCol >= board.Columns || wc.MinCol > wc.MaxCol {
			return errs.NewFatal(fmt.Sprintf("mult_setting: invalid wild_collect col range [%d,%d]", wc.MinCol, wc.MaxCol))
		}
	}
	ms.initFlag = true
	return nil
}

// Profile 依模式與當前累積倍數選出應使用的權重表。
func (ms *MultSetting) Profile(kind MultProfileKind, runningMult int) *MultProfile {
	switch kind {
	case MultAnte:
		return &ms.Ante
	case MultFreeLow, MultFreeHigh:
		if ms.FreeHighThreshold > 0 && runningMult >= ms.FreeHighThreshold {
			return &ms.FreeHigh
		}
		return &ms.FreeLow
	}
	return &ms.Standard
}
