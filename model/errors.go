package model

import (
	"errors"
	"fmt"
)

// 输入校验错误的具体原因
var (
	ErrNoVariableParameters = errors.New("structure has no variable parameters")
	ErrEmptyStructure       = errors.New("structure is empty")
	ErrBadRange             = errors.New("bad wavelength range")
	ErrTooManyPoints        = errors.New("too many wavelength points")
	ErrBadAngle             = errors.New("angle must be in [0, 90)")
	ErrUnknownLayerType     = errors.New("unknown layer type")
	ErrMissingField         = errors.New("missing layer field")
	ErrUnknownMode          = errors.New("unknown computation mode")
	ErrUnknownPolarization  = errors.New("unknown polarization")
	ErrUnknownMedium        = errors.New("unknown medium type")
	ErrNotScattering        = errors.New("first layer has no scattering coefficient")
	ErrBadIterations        = errors.New("iterations and parallelism must be positive")
	ErrBadRepeat            = errors.New("block repeat must not be negative")
	ErrBadThickness         = errors.New("layer thickness must not be negative")
)

// ValidationError 在开始计算之前返回，输入有误
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func Invalid(op string, err error) error {
	return &ValidationError{Op: op, Err: err}
}

func Invalidf(op string, err error, format string, args ...interface{}) error {
	return &ValidationError{Op: op, Err: fmt.Errorf("%w: "+format, append([]interface{}{err}, args...)...)}
}

// InternalInvariantError 表示程序逻辑错误，只用于 panic，不恢复
type InternalInvariantError struct {
	Msg string
}

func (e *InternalInvariantError) Error() string {
	return "internal invariant violated: " + e.Msg
}

func Invariant(format string, args ...interface{}) {
	panic(&InternalInvariantError{Msg: fmt.Sprintf(format, args...)})
}
