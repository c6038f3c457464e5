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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/megalab"
	"github.com/zintix-labs/megalab/demo/demo_configs"
	"github.com/zintix-labs/megalab/recorder"
	"github.com/zintix-labs/megalab/sdk/core"
	"github.com/zintix-labs/megalab/server"
	"github.com/zintix-labs/megalab/server/logger"
	"github.com/zintix-labs/megalab/server/svrcfg"
)

// This command is intentionally a "lab server" entrypoint for the megalab repo.
// It enables all developer endpoints by default.
// For production deployments, use a separate scaffold project and run ModeProd.
func main() {
	cfg, cleanup, err := loadConfigFromFlags()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer cleanup()
	server.Run(cfg)
}

type config struct {
	LogMode     string
	SlotBufSize int
	RecordPath  string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.IntVar(&cfg.SlotBufSize, "buf", 3, "number of machine instances per game")
	flag.StringVar(&cfg.RecordPath, "record", "", "write per-round zstd JSONL records to this file")

	flag.Parse()

	log, _ := logger.NewAsync(4096, cfg.norm())

	lab, err := megalab.NewAuto(core.Default(), megalab.Configs(demo_configs.FS), nil)
	if err != nil {
		return nil, nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:         log,
		SlotBufSize: cfg.SlotBufSize,
		Megalab:     lab,
	}

	cleanup := func() {}
	if cfg.RecordPath != "" {
		f, err := os.Create(cfg.RecordPath)
		if err != nil {
			return nil, nil, err
		}
		rec, err := recorder.NewRoundLogger(f, 1024)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		sCfg.Recorder = rec
		cleanup = func() {
			rec.Close()
			f.Close()
		}
	}
	return sCfg, cleanup, nil
}

func (cfg *config) norm() logger.LogMode {
	switch cfg.LogMode {
	case "ModeDev":
		return logger.ModeDev
	case "ModeProd":
		return logger.ModeProd
	case "ModeSilence":
		return logger.ModeSilence
	default:
		return logger.ModeDev
	}
}
