package calculator

import (
	"context"

	"tmm/model"
)

// calculator 的接口定义

type Calculator interface {
	// 获取CalcHub
	GetCalcHub() *CalcHub

	// 设置计算参数
	SetEnv(env model.Env) error
	SetRange(r model.Range) error
	SetMode(mode string) error
	SetPolarization(pol string) error
	SetAngle(angle float64) error
	SetTemperature(temperature float64)
	SetLeftMedium(m model.Medium) error
	SetRightMedium(m model.Medium) error

	// 设置结构
	SetStructure(desc model.StructureDescription) error

	// 设置随机化参数
	SetRandomization(p model.RandomizationParams) error

	// 计算，结果成功后才会替换已有结果
	Compute(ctx context.Context) (model.Spectrum, error)
	Randomize(ctx context.Context, progress chan<- int) (model.Spectrum, error)

	// 最近一次成功计算的结果
	Data() model.Spectrum
}
