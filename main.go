package main

import (
	"flag"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"tmm/calculator"
	"tmm/config"
	"tmm/metrics"
	"tmm/server"
)

var configPath = flag.String("config", "conf/config.ini", "配置文件路径")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn(err, "，使用默认配置")
		cfg = config.Default()
	}
	if err = cfg.SetupLog(); err != nil {
		log.Fatal(err)
	}

	collector, err := metrics.NewCollector(nil)
	if err != nil {
		log.Fatal(err)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	s := server.NewServer(cfg.Server.Addr, upgrader, func() calculator.Calculator {
		return calculator.NewCalculator(cfg.Calculator, collector)
	}).WithMetrics(cfg.Server.MetricsPath, collector.Handler())

	if err = s.Serve(); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
