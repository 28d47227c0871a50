package calculator

import (
	"math"

	log "github.com/sirupsen/logrus"

	"tmm/layer"
	"tmm/model"
	"tmm/optics"
	"tmm/structure"
)

// 计算状态：光照条件 + 两侧介质 + 结构 + 随机化参数

// 参数解释
// 1. 波长范围 nm，序列为 start, start+step, ... <= end
// 2. 入射角 度，[0, 90)
// 3. 温度 K
// 4. 左侧介质为入射介质，Snell 定律以其为参考

type State struct {
	Range        model.Range
	Mode         optics.Mode
	Polarization optics.Polarization
	Angle        float64
	Temperature  float64

	Left  *layer.Medium
	Right *layer.Medium

	Structure *structure.Structure

	Random model.RandomizationParams
}

func newState(cfg Config) State {
	return State{
		Range:        cfg.Range,
		Mode:         optics.Reflectance,
		Polarization: optics.S,
		Temperature:  cfg.Temperature,
		Left:         layer.Air(),
		Right:        layer.Air(),
		Structure:    structure.Empty(),
		Random: model.RandomizationParams{
			Iterations:  cfg.Iterations,
			Parallelism: cfg.Parallelism,
			Seed:        cfg.Seed,
		},
	}
}

func (s State) light(wl float64) optics.Light {
	return optics.Light{
		Wavelength:   wl,
		Polarization: s.Polarization,
		Angle:        s.Angle,
		Temperature:  s.Temperature,
	}
}

func validateRange(r model.Range) error {
	if !(r.Start > 0 && r.Step > 0 && r.End >= r.Start) || math.IsInf(r.End, 1) {
		return model.Invalidf("range", model.ErrBadRange, "start %v, end %v, step %v", r.Start, r.End, r.Step)
	}
	if n := points(r); n > model.MaxPoints {
		return model.Invalidf("range", model.ErrTooManyPoints, "%.0f points, at most %d", n, model.MaxPoints)
	}
	return nil
}

func validateAngle(angle float64) error {
	if angle < 0 || angle >= model.MaxAngle {
		return model.Invalidf("angle", model.ErrBadAngle, "%v", angle)
	}
	return nil
}

// 以下为 calculator 的参数设置

func (c *calculator) SetEnv(env model.Env) error {
	mode, err := optics.ParseMode(env.Mode)
	if err != nil {
		return err
	}
	pol, err := optics.ParsePolarization(env.Polarization)
	if err != nil {
		return err
	}
	if err = validateRange(env.Range); err != nil {
		return err
	}
	if err = validateAngle(env.Angle); err != nil {
		return err
	}
	left, err := layer.NewMedium(env.LeftMedium)
	if err != nil {
		return err
	}
	right, err := layer.NewMedium(env.RightMedium)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Range = env.Range
	c.state.Mode = mode
	c.state.Polarization = pol
	c.state.Angle = env.Angle
	c.state.Left = left
	c.state.Right = right
	c.mu.Unlock()
	c.SetTemperature(env.Temperature)

	log.WithFields(log.Fields{
		"Range":        env.Range,
		"Mode":         mode,
		"Polarization": pol,
		"Angle":        env.Angle,
		"LeftMedium":   left.Index,
		"RightMedium":  right.Index,
	}).Info("设置计算参数")
	return nil
}

func (c *calculator) SetRange(r model.Range) error {
	if err := validateRange(r); err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Range = r
	c.mu.Unlock()
	log.WithFields(log.Fields{"Start": r.Start, "End": r.End, "Step": r.Step}).Info("设置波长范围")
	return nil
}

func (c *calculator) SetMode(mode string) error {
	m, err := optics.ParseMode(mode)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Mode = m
	c.mu.Unlock()
	log.WithField("Mode", m).Info("设置计算模式")
	return nil
}

func (c *calculator) SetPolarization(pol string) error {
	p, err := optics.ParsePolarization(pol)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Polarization = p
	c.mu.Unlock()
	log.WithField("Polarization", p).Info("设置偏振")
	return nil
}

func (c *calculator) SetAngle(angle float64) error {
	if err := validateAngle(angle); err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Angle = angle
	c.mu.Unlock()
	log.WithField("Angle", angle).Info("设置入射角")
	return nil
}

// 温度不大于 0 时使用默认温度
func (c *calculator) SetTemperature(temperature float64) {
	if temperature <= 0 {
		log.WithField("Temperature", temperature).Warn("温度无效，使用默认温度")
		temperature = c.cfg.Temperature
	}
	c.mu.Lock()
	c.state.Temperature = temperature
	c.mu.Unlock()
}

func (c *calculator) SetLeftMedium(m model.Medium) error {
	medium, err := layer.NewMedium(m)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Left = medium
	c.mu.Unlock()
	log.WithField("LeftMedium", medium.Index).Info("设置左侧介质")
	return nil
}

func (c *calculator) SetRightMedium(m model.Medium) error {
	medium, err := layer.NewMedium(m)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Right = medium
	c.mu.Unlock()
	log.WithField("RightMedium", medium.Index).Info("设置右侧介质")
	return nil
}

func (c *calculator) SetStructure(desc model.StructureDescription) error {
	s, err := structure.Build(desc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Structure = s
	c.mu.Unlock()
	log.WithFields(log.Fields{
		"Blocks":    len(s.Blocks),
		"Layers":    s.Len(),
		"Variables": len(s.Vars()),
	}).Info("设置结构")
	return nil
}

func (c *calculator) SetRandomization(p model.RandomizationParams) error {
	if p.Iterations <= 0 || p.Parallelism <= 0 || p.Iterations > model.MaxIterations {
		return model.Invalidf("randomization", model.ErrBadIterations, "iterations %d, parallelism %d", p.Iterations, p.Parallelism)
	}
	c.mu.Lock()
	c.state.Random = p
	c.mu.Unlock()
	log.WithFields(log.Fields{
		"Iterations":  p.Iterations,
		"Parallelism": p.Parallelism,
		"Seed":        p.Seed,
	}).Info("设置随机化参数")
	return nil
}

func (c *calculator) snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
