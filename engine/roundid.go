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

package engine

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

// NewRoundID 產生局號：毫秒時間戳 + 隨機尾碼，皆以 base36 編碼。
// 只保證唯一性（碰撞機率可忽略），格式本身不是合約，外部視為不透明字串。
func NewRoundID() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	suffix := binary.BigEndian.Uint64(buf[:]) >> 16 // 48-bit 尾碼已足夠
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + strconv.FormatUint(suffix, 36)
}
