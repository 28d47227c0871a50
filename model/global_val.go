package model

// 全局常量
// 波长单位 nm，能量单位 eV，温度单位 K，吸收/散射系数单位 cm^-1

const (
	NmToCm        = 1e-7
	EnergyByNm    = 1239.8 // E[eV] = EnergyByNm / λ[nm]
	DefaultTemp   = 300.0
	MaxAngle      = 90.0
	MaxIterations = 1000000
	MaxPoints     = 100000 // 一次扫描的最多波长点数
)
