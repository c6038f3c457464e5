package spec

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/errs"
)

// ScatterTier 一檔 Scatter 獎勵：盤面 Scatter 數達 Count 時適用。
// PayMult 以百分之一為單位（200 = 2.00x 總注）。
type ScatterTier struct {
	Count   int   `yaml:"count"    json:"count"`
	Spins   int   `yaml:"spins"    json:"spins"`
	PayMult int64 `yaml:"pay_mult" json:"pay_mult"`

	Pay decimal.Decimal `yaml:"-" json:"-"`
}

// ScatterSetting Scatter 獎勵表與免費遊戲參數。
//
// 獎勵檔位依 Count 遞增排列；結算時取「Count 門檻 <= 盤面 Scatter 數」的最高檔。
// RetriggerCount/RetriggerSpins 描述免費遊戲中再觸發的門檻與追加局數。
type ScatterSetting struct {
	Tiers          []ScatterTier `yaml:"tiers"           json:"tiers"`
	RetriggerCount int           `yaml:"retrigger_count" json:"retrigger_count"`
	RetriggerSpins int           `yaml:"retrigger_spins" json:"retrigger_spins"`

	initFlag bool
}

// Init 驗證檔位遞增並換算賠付倍數。
func (ss *ScatterSetting) Init() error {
	if ss.initFlag {
		return nil
	}
	hundred := decimal.NewFromInt(100)
	for i := range ss.Tiers {
		t := &ss.Tiers[i]
		if t.Count < 1 {
			return errs.NewFatal(fmt.Sprintf("scatter_setting: tier %d has count < 1", i))
		}
		if i > 0 && t.Count <= ss.Tiers[i-1].Count {
			return errs.NewFatal("scatter_setting: tiers must be ascending by count")
		}
		if t.Spins < 0 || t.PayMult < 0 {
			return errs.NewFatal(fmt.Sprintf("scatter_setting: tier %d has negative reward", i))
		}
		t.Pay = decimal.NewFromInt(t.PayMult).Div(hundred)
	}
	if ss.RetriggerCount < 0 || ss.RetriggerSpins < 0 {
		return errs.NewFatal("scatter_setting: negative retrigger")
	}
	ss.initFlag = true
	return nil
}

// TierFor 回傳「門檻 <= count」的最高獎勵檔；沒有任何檔位達標回傳 nil。
func (ss *ScatterSetting) TierFor(count int) *ScatterTier {
	var hit *ScatterTier
	for i := range ss.Tiers {
		if ss.Tiers[i].Count <= count {
			hit = &ss.Tiers[i]
		}
	}
	return hit
}

// CanRetrigger 回報免費遊戲中此 Scatter 數是否達到再觸發門檻。
func (ss *ScatterSetting) CanRetrigger(count int) bool {
	return ss.RetriggerCount > 0 && count >= ss.RetriggerCount
}
