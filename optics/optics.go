package optics

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"tmm/model"
)

type Polarization int

const (
	S Polarization = iota
	P
)

func (p Polarization) String() string {
	if p == P {
		return "P"
	}
	return "S"
}

func ParsePolarization(s string) (Polarization, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S":
		return S, nil
	case "P":
		return P, nil
	}
	return S, model.Invalidf("polarization", model.ErrUnknownPolarization, "%q", s)
}

// 计算模式
type Mode int

const (
	Reflectance Mode = iota
	Transmittance
	Absorbance
	Permittivity
	RefractiveIndex
	ExtinctionCoefficient
	ScatteringCoefficient
)

var modeNames = map[Mode]string{
	Reflectance:           "Reflectance",
	Transmittance:         "Transmittance",
	Absorbance:            "Absorbance",
	Permittivity:          "Permittivity",
	RefractiveIndex:       "Refractive Index",
	ExtinctionCoefficient: "Extinction Coefficient",
	ScatteringCoefficient: "Scattering Coefficient",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// 复数模式下结果有虚部
func (m Mode) IsComplex() bool {
	return m == Permittivity || m == RefractiveIndex
}

// 仅依赖第一层的模式
func (m Mode) UsesFirstLayer() bool {
	return m == Permittivity || m == RefractiveIndex || m == ExtinctionCoefficient || m == ScatteringCoefficient
}

func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	for m, name := range modeNames {
		if strings.ToLower(name) == key {
			return m, nil
		}
	}
	return Reflectance, model.Invalidf("mode", model.ErrUnknownMode, "%q", s)
}

// 一次计算的入射光条件
// Incidence 为入射（左侧）介质在该波长下的折射率，用于 Snell 定律
type Light struct {
	Wavelength   float64 // nm
	Polarization Polarization
	Angle        float64 // 度
	Temperature  float64 // K
	Incidence    complex128
}

// 由介电常数求折射率，主值分支，实部虚部均非负
func ToRefractiveIndex(eps complex128) complex128 {
	abs := cmplx.Abs(eps)
	return complex(math.Sqrt((abs+real(eps))/2), math.Sqrt((abs-real(eps))/2))
}

// alpha = 4πk/λ，单位 cm^-1
func ToExtinctionCoefficient(n complex128, wl float64) float64 {
	return 4 * math.Pi * imag(n) / ToCm(wl)
}

func ToCm(wl float64) float64 {
	return wl * model.NmToCm
}

func ToEnergy(wl float64) float64 {
	return model.EnergyByNm / wl
}

func ToWavelength(energy float64) float64 {
	return model.EnergyByNm / energy
}

func CosThetaIncident(angle float64) complex128 {
	return complex(math.Cos(angle*math.Pi/180), 0)
}

// Snell 定律，始终以入射介质为参考
func CosThetaInLayer(nIncidence, nLayer complex128, angle float64) complex128 {
	cos1 := CosThetaIncident(angle)
	sin1Sq := 1 - cos1*cos1
	ratio := nIncidence / nLayer
	sin2Sq := sin1Sq * ratio * ratio
	return cmplx.Sqrt(1 - sin2Sq)
}
