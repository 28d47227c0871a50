package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"tmm/calculator"
	"tmm/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader

	// 每个连接创建一个新的 calculator
	newCalculator func() calculator.Calculator

	metricsPath    string
	metricsHandler http.Handler
}

func NewServer(addr string, upgrader websocket.Upgrader, newCalculator func() calculator.Calculator) *Server {
	return &Server{
		addr:          addr,
		upgrader:      upgrader,
		newCalculator: newCalculator,
	}
}

// WithMetrics 在 path 上暴露 Prometheus 指标
func (s *Server) WithMetrics(path string, h http.Handler) *Server {
	s.metricsPath = path
	s.metricsHandler = h
	return s
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket 升级失败: ", err)
		return
	}
	defer conn.Close()

	hub := NewHub(s.newCalculator())
	hub.conn = conn
	defer close(hub.done)

	logger := log.WithField("remote", conn.RemoteAddr().String())
	logger.Info("连接建立")

	go hub.handleRequest()
	go hub.handleResponse()
	for {
		var msg model.Msg
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("err: ", err)
			}
			logger.Info("连接断开")
			return
		}
		hub.msg <- msg
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	if s.metricsHandler != nil {
		mux.Handle(s.metricsPath, s.metricsHandler)
	}
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("服务启动")
	return http.ListenAndServe(s.addr, s.Handler())
}
