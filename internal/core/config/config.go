// Package config provides configuration management for dosecalc services.
package config

import (
	"time"
)

// ServerConfig holds configuration for the gRPC dosage service.
type ServerConfig struct {
	Host           string
	Port           int
	MaxConnections int
	RequestTimeout time.Duration
}

// LogConfig selects logrus level and formatter.
type LogConfig struct {
	Level  string
	Format string
}

// Options are the editor pick lists for rule metadata. The engine copies
// Unit, Frequency and Route verbatim, so these only guide rule authors and
// the rules validate command.
type Options struct {
	Routes      []string
	Units       []string
	Frequencies []string
}

// Config is the complete service configuration.
type Config struct {
	Server      ServerConfig
	DatabaseURL string
	Log         LogConfig
	Options     Options
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           50051,
			MaxConnections: 1000,
			RequestTimeout: 30 * time.Second,
		},
		DatabaseURL: "sqlite://./data/dosecalc.db",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Options: Options{
			Routes:      append([]string(nil), defaultRoutes...),
			Units:       append([]string(nil), defaultUnits...),
			Frequencies: append([]string(nil), defaultFrequencies...),
		},
	}
}

var defaultUnits = []string{"mg", "g", "包", "粒", "片", "支", "ml", "U", "IU"}

var defaultFrequencies = []string{
	"PID", "QID", "TID", "BID", "QD", "QN", "Q2H", "Q4H", "Q6H", "Q8H",
	"Q12H", "QOD", "Q3D", "QW", "SOS", "ST",
}

var defaultRoutes = []string{
	"口服", "含服", "静脉注射", "静脉滴注", "肌肉注射", "皮下注射", "皮内注射",
	"局麻用", "外用", "外敷", "外涂", "外洗", "外贴", "外喷", "舌下含服",
	"直肠给药", "灌肠", "肛门塞入", "鼻腔喷雾", "口腔喷雾", "吸入", "雾化吸入",
	"滴耳", "滴眼", "透皮贴片", "阴道给药",
}

// Contains reports whether value is one of the options in list.
func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
