// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dto

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/megalab/corefmt"
	"github.com/zintix-labs/megalab/engine"
	"github.com/zintix-labs/megalab/spec"
)

func TestDecodeSpinRequestGet(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/spin?uid=u1&game=mini&gid=7&bets=1.00,2.00&bet_mode=1&buy=true", nil)
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.UID != "u1" || req.GameName != "mini" || req.GameId != 7 {
		t.Fatalf("identity mismatch: %+v", req)
	}
	if len(req.Bets) != 2 || !req.Bets[1].Equal(decimal.NewFromInt(2)) {
		t.Fatalf("bets mismatch: %v", req.Bets)
	}
	if req.BetMode != 1 || !req.Buy {
		t.Fatalf("mode/buy mismatch: %+v", req)
	}

	bad := httptest.NewRequest("GET", "/v1/spin?gid=abc", nil)
	if _, err := DecodeSpinRequest(bad); err == nil {
		t.Fatalf("invalid gid must be rejected")
	}
	badBets := httptest.NewRequest("GET", "/v1/spin?bets=1.0,x", nil)
	if _, err := DecodeSpinRequest(badBets); err == nil {
		t.Fatalf("invalid bets must be rejected")
	}
}

func TestDecodeSpinRequestPost(t *testing.T) {
	body := `{"uid":"u1","game":"mini","gid":7,"base_bet":"1.00","total_bet":"1.00",
		"session":{"start_b64u":"AAAA","free":{"spins_remaining":3,"total_awarded":5,"total_mult":"2","feature_win":"10.5"}}}`
	r := httptest.NewRequest("POST", "/v1/spin", strings.NewReader(body))
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Session == nil || req.Session.StartCoreSnapB64U != "AAAA" {
		t.Fatalf("session not decoded: %+v", req.Session)
	}
	if req.Session.Free == nil || req.Session.Free.SpinsRemaining != 3 {
		t.Fatalf("free snapshot not decoded: %+v", req.Session.Free)
	}
}

func TestDecodeSpinRequestRejectsUnknownFields(t *testing.T) {
	// after_b64u 只會出現在回應；請求端帶入必須被強硬拒絕
	body := `{"uid":"u1","game":"mini","gid":7,"session":{"start_b64u":"AAAA","after_b64u":"BBBB"}}`
	r := httptest.NewRequest("POST", "/v1/spin", strings.NewReader(body))
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatalf("after_b64u in request must be rejected")
	}

	top := `{"uid":"u1","bogus_field":1}`
	r = httptest.NewRequest("POST", "/v1/spin", strings.NewReader(top))
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatalf("unknown top-level field must be rejected")
	}
}

func TestDecodeSpinRequestMethod(t *testing.T) {
	r := httptest.NewRequest("DELETE", "/v1/spin", nil)
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatalf("unsupported method must be rejected")
	}
	if _, err := DecodeSpinRequest(nil); err == nil {
		t.Fatalf("nil request must be rejected")
	}
}

func TestParseDefaults(t *testing.T) {
	sr := &SpinRequest{
		Bets: []decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2)},
	}
	req, snap, err := sr.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !req.BaseBet.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("base bet default expected bets[0], got %s", req.BaseBet)
	}
	if !req.TotalBet.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("total bet default expected sum, got %s", req.TotalBet)
	}
	if snap != nil {
		t.Fatalf("no session means no snapshot")
	}
	if req.BetMode != engine.BetStandard || req.Free != nil {
		t.Fatalf("defaults mismatch: %+v", req)
	}
}

func TestParseBetModeAndSession(t *testing.T) {
	ante := &SpinRequest{BaseBet: decimal.NewFromInt(1), TotalBet: decimal.NewFromInt(1), BetMode: 1}
	req, _, err := ante.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.BetMode != engine.BetAnte {
		t.Fatalf("expected ante bet mode")
	}

	bad := &SpinRequest{BetMode: 2}
	if _, _, err := bad.Parse(); err == nil {
		t.Fatalf("unknown bet_mode must be rejected")
	}

	snapIn := corefmt.EncodeBase64URL([]byte{1, 2, 3})
	withSnap := &SpinRequest{
		BaseBet:  decimal.NewFromInt(1),
		TotalBet: decimal.NewFromInt(1),
		Session:  &SessionState{StartCoreSnapB64U: snapIn},
	}
	_, snap, err := withSnap.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(snap) != 3 || snap[0] != 1 {
		t.Fatalf("snapshot round-trip mismatch: %v", snap)
	}

	badSnap := &SpinRequest{Session: &SessionState{StartCoreSnapB64U: "!!"}}
	if _, _, err := badSnap.Parse(); err == nil {
		t.Fatalf("invalid snapshot must be rejected")
	}
}

func TestParseFreeStateValidation(t *testing.T) {
	drained := &SpinRequest{Session: &SessionState{Free: &FreeSpinStateDTO{SpinsRemaining: 0}}}
	if _, _, err := drained.Parse(); err == nil {
		t.Fatalf("zero spins remaining must be rejected")
	}
	inconsistent := &SpinRequest{Session: &SessionState{Free: &FreeSpinStateDTO{SpinsRemaining: 5, TotalAwarded: 3}}}
	if _, _, err := inconsistent.Parse(); err == nil {
		t.Fatalf("total_awarded below spins_remaining must be rejected")
	}
	negative := &SpinRequest{Session: &SessionState{Free: &FreeSpinStateDTO{
		SpinsRemaining: 2, TotalAwarded: 5, TotalMult: decimal.NewFromInt(-1),
	}}}
	if _, _, err := negative.Parse(); err == nil {
		t.Fatalf("negative amounts must be rejected")
	}

	ok := &SpinRequest{
		BaseBet:  decimal.NewFromInt(1),
		TotalBet: decimal.NewFromInt(1),
		Session: &SessionState{Free: &FreeSpinStateDTO{
			SpinsRemaining: 2, TotalAwarded: 5,
			TotalMult:  decimal.NewFromInt(4),
			FeatureWin: decimal.NewFromInt(10),
		}},
	}
	req, _, err := ok.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Free == nil || req.Free.SpinsRemaining != 2 || !req.Free.TotalMult.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("free state mismatch: %+v", req.Free)
	}
}

func TestNewSpinResultDTO(t *testing.T) {
	gs := &spec.GameSetting{GameName: "mini", GameID: 7}
	rr := &engine.RoundResult{
		Mode:     engine.ModeBase,
		TotalWin: decimal.RequireFromString("12.30"),
		NextFree: &engine.FreeSpinState{SpinsRemaining: 4, TotalAwarded: 4},
	}
	res, err := NewSpinResultDTO(gs, "r-1", rr, []byte{9}, []byte{8})
	if err != nil {
		t.Fatalf("build dto: %v", err)
	}
	if res.Status != StatusOK || res.RoundID != "r-1" || res.GameName != "mini" {
		t.Fatalf("identity mismatch: %+v", res)
	}
	if res.Mode != "base_game" {
		t.Fatalf("mode string mismatch: %s", res.Mode)
	}
	if res.State.Free == nil || res.State.Free.SpinsRemaining != 4 {
		t.Fatalf("free snapshot missing: %+v", res.State.Free)
	}

	start, err := corefmt.DecodeBase64URL(res.State.StartCoreSnapB64U)
	if err != nil || len(start) != 1 || start[0] != 9 {
		t.Fatalf("start snapshot mismatch: %v %v", start, err)
	}
	after, err := corefmt.DecodeBase64URL(res.State.AfterCoreSnapB64U)
	if err != nil || after[0] != 8 {
		t.Fatalf("after snapshot mismatch: %v %v", after, err)
	}

	if _, err := NewSpinResultDTO(gs, "r-1", nil, nil, nil); err == nil {
		t.Fatalf("nil round result must be rejected")
	}
}
