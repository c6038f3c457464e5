package spec

import (
	"fmt"

	"github.com/zintix-labs/megalab/errs"
)

// GID 遊戲唯一識別碼（Catalog 內唯一，路由與查表用）
type GID int

// GameSetting 包含啟動一個機台所需的所有高階設定。
//
// 一份設定即描述一款完整的 Megaways 消除式遊戲：
// 符號表與賠付、盤面形狀、各模式輪帶庫、頂部輪帶、
// 倍數權重組、Scatter 獎勵與免費遊戲參數、封頂倍數與購買費率。
type GameSetting struct {
	GameName       string         `yaml:"game_name"        json:"game_name"`
	GameID         GID            `yaml:"game_id"          json:"game_id"`
	BetUnits       []int          `yaml:"bet_units"        json:"bet_units"`
	MaxWinMult     int            `yaml:"max_win_mult"     json:"max_win_mult"`
	BuyCostMult    int            `yaml:"buy_cost_mult"    json:"buy_cost_mult"`
	SymbolSetting  SymbolSetting  `yaml:"symbol_setting"   json:"symbol_setting"`
	BoardSetting   BoardSetting   `yaml:"board_setting"    json:"board_setting"`
	StripSetting   StripSetting   `yaml:"strip_setting"    json:"strip_setting"`
	TopReelSetting TopReelSetting `yaml:"top_reel_setting" json:"top_reel_setting"`
	MultSetting    MultSetting    `yaml:"mult_setting"     json:"mult_setting"`
	ScatterSetting ScatterSetting `yaml:"scatter_setting"  json:"scatter_setting"`
}

// init 依序初始化各子設定並做跨設定檢查；任一步失敗即整份設定作廢。
func (gs *GameSetting) init() error {
	if err := gs.SymbolSetting.Init(); err != nil {
		return err
	}
	if err := gs.BoardSetting.Init(); err != nil {
		return err
	}
	if err := gs.StripSetting.Init(&gs.SymbolSetting, &gs.BoardSetting); err != nil {
		return err
	}
	if err := gs.TopReelSetting.Init(&gs.SymbolSetting, &gs.BoardSetting); err != nil {
		return err
	}
	if err := gs.MultSetting.Init(&gs.BoardSetting); err != nil {
		return err
	}
	if err := gs.ScatterSetting.Init(); err != nil {
		return err
	}
	return gs.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (gs *GameSetting) valid() error {
	if gs.GameName == "" {
		return errs.NewFatal("empty game_name")
	}

	// valid BetUnits
	if len(gs.BetUnits) == 0 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:empty bet_units", gs.GameName))
	}
	for _, b := range gs.BetUnits {
		if b < 1 {
			return errs.NewFatal(fmt.Sprintf("game_name: %s err:invalid bet unit", gs.GameName))
		}
	}

	// 封頂倍數為硬上限，至少要能容下 1 倍賠付
	if gs.MaxWinMult < 1 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:max_win_mult must be >= 1", gs.GameName))
	}

	// 購買功能費率：0 代表該遊戲不開放購買
	if gs.BuyCostMult < 0 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:buy_cost_mult must be >= 0", gs.GameName))
	}

	return nil
}

// BuyEnabled 回報此遊戲是否開放直接購買免費遊戲。
func (gs *GameSetting) BuyEnabled() bool {
	return gs.BuyCostMult > 0
}
