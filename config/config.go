package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"tmm/calculator"
)

type Config struct {
	Server     Server
	Log        Log
	Calculator calculator.Config
}

type Server struct {
	Addr            string
	ReadBufferSize  int
	WriteBufferSize int
	MetricsPath     string
}

type Log struct {
	Level string
	JSON  bool
}

// Load 读取配置文件，缺失的项使用默认值
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("配置文件读取错误，请检查文件路径: %w", err)
	}
	return loadCfg(file), nil
}

func Default() *Config {
	return loadCfg(ini.Empty())
}

func loadCfg(file *ini.File) *Config {
	return &Config{
		Server: Server{
			Addr:            file.Section("server").Key("Addr").MustString(":9000"),
			ReadBufferSize:  file.Section("server").Key("ReadBufferSize").MustInt(1024),
			WriteBufferSize: file.Section("server").Key("WriteBufferSize").MustInt(1024),
			MetricsPath:     file.Section("server").Key("MetricsPath").MustString("/metrics"),
		},
		Log: Log{
			Level: file.Section("log").Key("Level").MustString("info"),
			JSON:  file.Section("log").Key("JSON").MustBool(false),
		},
		Calculator: calculator.LoadConfig(file),
	}
}

// SetupLog 按配置设置 logrus
func (c *Config) SetupLog() error {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("日志级别错误: %w", err)
	}
	log.SetLevel(level)
	if c.Log.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
