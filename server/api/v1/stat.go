package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/megalab/recorder"
	"github.com/zintix-labs/megalab/stats"
)

type DistStat struct {
	// SpinRequest
	GameName string `json:"game_name"`
	BetUnits []int  `json:"bet_units"`
	BetMode  int    `json:"bet_mode"`
	Bet      int    `json:"bet"`
	// RoundRecord
	TotalWins []int `json:"total_wins"`
	BaseWins  []int `json:"base_wins"`
	FreeWins  []int `json:"free_wins"`
	Triggers  []int `json:"triggers"`
}

func Stat(w http.ResponseWriter, r *http.Request) {
	// Post方法限定
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 嘗試解析
	dst := new(DistStat)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(dst.BetUnits) == 0 || dst.BetMode < 0 || dst.BetMode >= len(dst.BetUnits) {
		http.Error(w, "bet_units/bet_mode mismatch", http.StatusBadRequest)
		return
	}

	// 對齊局數
	round := min(len(dst.TotalWins), len(dst.BaseWins), len(dst.FreeWins), len(dst.Triggers))
	if round < 1 {
		http.Error(w, "round must > 0", http.StatusBadRequest)
		return
	}

	// 繞過New方法，自己構造 SpinRecorder (否則會出錯)
	rec := &recorder.SpinRecorder{
		BetUnits: dst.BetUnits,
		BetUnit:  dst.BetUnits[dst.BetMode],
		Basic:    new(recorder.BasicRecord),
		Dist:     new(recorder.DistRecord),
		Player:   new(recorder.PlayerRecord),
	}
	rec.Dist.Bucket = stats.Buckets.GetBucketByBetUnit(rec.BetUnit)
	rec.Dist.TotalWinCollect = make([]int, len(stats.Buckets.WinBucketStr()))
	rec.Dist.BaseWinCollect = make([]int, len(stats.Buckets.WinBucketStr()))
	rec.Dist.FreeWinCollect = make([]int, len(stats.Buckets.WinBucketStr()))

	for i := 0; i < round; i++ {
		rec.Record(recorder.RoundRecord{
			Bet:       dst.Bet,
			TotalWin:  dst.TotalWins[i],
			BaseWin:   dst.BaseWins[i],
			FreeWin:   dst.FreeWins[i],
			Triggered: dst.Triggers[i] > 0,
		})
	}
	st := rec.Done()
	st.Done()
	st.Summary.GameName = dst.GameName
	if err := json.NewEncoder(w).Encode(st); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
}
