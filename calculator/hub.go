package calculator

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrBusy = errors.New("calculation already running")

// CalcHub 控制计算的开始与停止，同一时间只允许一个计算
type CalcHub struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

func NewCalcHub() *CalcHub {
	return &CalcHub{}
}

// StartSignal 开始一次计算，返回的 ctx 在 StopSignal 时取消
func (ch *CalcHub) StartSignal(parent context.Context) (context.Context, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.running {
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(parent)
	ch.cancel = cancel
	ch.running = true
	return ctx, nil
}

// StopSignal 停止正在进行的计算，没有计算时返回 false
func (ch *CalcHub) StopSignal() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if !ch.running {
		return false
	}
	log.Info("停止计算")
	ch.cancel()
	return true
}

// FinishSignal 计算结束（完成、出错或取消）后调用
func (ch *CalcHub) FinishSignal() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.cancel != nil {
		ch.cancel()
	}
	ch.cancel = nil
	ch.running = false
}

func (ch *CalcHub) Running() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.running
}
