package server

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"tmm/calculator"
	"tmm/model"
)

// 消息类型
const (
	// request
	TypeEnv       = "env"
	TypeStructure = "structure"
	TypeCompute   = "compute"
	TypeRandomize = "randomize"
	TypeStop      = "stop"

	// response
	TypeEnvSet       = "envSet"
	TypeStructureSet = "structureSet"
	TypeComputed     = "computed"
	TypeProgress     = "progress"
	TypeRandomized   = "randomized"
	TypeStopped      = "stopped"
	TypeError        = "error"
)

// Hub 每个连接一个，持有自己的 calculator
type Hub struct {
	c    calculator.Calculator
	conn *websocket.Conn
	// request
	msg chan model.Msg
	// response
	reply chan model.Msg
	done  chan struct{}
}

func NewHub(c calculator.Calculator) *Hub {
	return &Hub{
		c:     c,
		msg:   make(chan model.Msg, 10),
		reply: make(chan model.Msg, 64),
		done:  make(chan struct{}),
	}
}

// 只有这里写连接
func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithField("type", reply.Type).Error("发送失败: ", err)
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			h.dispatch(msg)
		case <-h.done:
			h.c.GetCalcHub().StopSignal()
			return
		}
	}
}

func (h *Hub) send(msg model.Msg) {
	select {
	case h.reply <- msg:
	case <-h.done:
	}
}

func (h *Hub) sendError(err error) {
	h.send(model.Msg{Type: TypeError, Content: err.Error()})
}

func (h *Hub) sendJSON(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.sendError(err)
		return
	}
	h.send(model.Msg{Type: typ, Content: string(data)})
}

func (h *Hub) dispatch(msg model.Msg) {
	switch msg.Type {
	case TypeEnv:
		var env model.Env
		if err := json.Unmarshal([]byte(msg.Content), &env); err != nil {
			h.sendError(err)
			return
		}
		if err := h.c.SetEnv(env); err != nil {
			h.sendError(err)
			return
		}
		h.send(model.Msg{Type: TypeEnvSet, Content: "env is set"})
	case TypeStructure:
		var desc model.StructureDescription
		if err := json.Unmarshal([]byte(msg.Content), &desc); err != nil {
			h.sendError(err)
			return
		}
		if err := h.c.SetStructure(desc); err != nil {
			h.sendError(err)
			return
		}
		h.send(model.Msg{Type: TypeStructureSet, Content: "structure is set"})
	case TypeCompute:
		ctx, err := h.c.GetCalcHub().StartSignal(context.Background())
		if err != nil {
			h.sendError(err)
			return
		}
		go h.compute(ctx)
	case TypeRandomize:
		if msg.Content != "" {
			var p model.RandomizationParams
			if err := json.Unmarshal([]byte(msg.Content), &p); err != nil {
				h.sendError(err)
				return
			}
			if err := h.c.SetRandomization(p); err != nil {
				h.sendError(err)
				return
			}
		}
		ctx, err := h.c.GetCalcHub().StartSignal(context.Background())
		if err != nil {
			h.sendError(err)
			return
		}
		go h.randomize(ctx)
	case TypeStop:
		if !h.c.GetCalcHub().StopSignal() {
			h.send(model.Msg{Type: TypeStopped, Content: "nothing to stop"})
		}
	default:
		log.WithField("type", msg.Type).Warn("no such type")
		h.send(model.Msg{Type: TypeError, Content: "no such type: " + msg.Type})
	}
}

// 先释放 CalcHub 再回复，客户端收到结果后即可开始下一次计算
func (h *Hub) compute(ctx context.Context) {
	spectrum, err := h.c.Compute(ctx)
	h.c.GetCalcHub().FinishSignal()
	h.finish(TypeComputed, spectrum, err)
}

func (h *Hub) randomize(ctx context.Context) {
	progress := make(chan int)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for cnt := range progress {
			h.send(model.Msg{Type: TypeProgress, Content: strconv.Itoa(cnt)})
		}
	}()
	spectrum, err := h.c.Randomize(ctx, progress)
	<-forwarded
	h.c.GetCalcHub().FinishSignal()
	h.finish(TypeRandomized, spectrum, err)
}

func (h *Hub) finish(typ string, spectrum model.Spectrum, err error) {
	switch {
	case err == nil:
		h.sendJSON(typ, spectrum)
	case errors.Is(err, context.Canceled):
		h.send(model.Msg{Type: TypeStopped, Content: "stopped"})
	default:
		h.sendError(err)
	}
}
