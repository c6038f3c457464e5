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

package demo

import (
	"github.com/zintix-labs/megalab"
	"github.com/zintix-labs/megalab/catalog"
	"github.com/zintix-labs/megalab/demo/demo_configs"
	"github.com/zintix-labs/megalab/errs"
	"github.com/zintix-labs/megalab/sdk/core"
	"github.com/zintix-labs/megalab/server/logger"
	"github.com/zintix-labs/megalab/server/svrcfg"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := megalab.NewAuto(core.Default(), megalab.Configs(demo_configs.FS), nil)
	if err != nil {
		return nil, errs.NewFatal("new megalab failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log:         logger.NewDefaultAsyncLogger(logger.ModeDev),
		SlotBufSize: 1,
		Megalab:     lab,
	}
	return scfg, nil
}

func NewMegaLab() (*megalab.Megalab, error) {
	return megalab.NewAuto(core.Default(), megalab.Configs(demo_configs.FS), nil)
}
