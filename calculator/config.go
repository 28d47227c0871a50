package calculator

import (
	"runtime"

	"gopkg.in/ini.v1"

	"tmm/model"
)

// 计算相关的默认配置，来自 conf/config.ini 的 [computation] 与 [randomization]
type Config struct {
	Workers int // 普通计算时按波长并行的协程数

	Range       model.Range
	Temperature float64

	Iterations  int
	Parallelism int
	Seed        uint64
}

func DefaultConfig() Config {
	return LoadConfig(ini.Empty())
}

func LoadConfig(file *ini.File) Config {
	computation := file.Section("computation")
	randomization := file.Section("randomization")
	return Config{
		Workers: computation.Key("Workers").MustInt(runtime.NumCPU()),
		Range: model.Range{
			Start: computation.Key("Start").MustFloat64(400),
			End:   computation.Key("End").MustFloat64(1000),
			Step:  computation.Key("Step").MustFloat64(1),
		},
		Temperature: computation.Key("Temperature").MustFloat64(model.DefaultTemp),

		Iterations:  randomization.Key("Iterations").MustInt(100),
		Parallelism: randomization.Key("Parallelism").MustInt(runtime.NumCPU()),
		Seed:        randomization.Key("Seed").MustUint64(1),
	}
}
