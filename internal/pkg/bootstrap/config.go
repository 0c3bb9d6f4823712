// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Config 是服务的全量静态配置。
// 业务层面的开关（PlatformSettings）不在这里：它有独立的版本化更新路径，
// 由 settings 存储管理，这里只描述基础设施。
type Config struct {
	App struct {
		Name          string        `yaml:"name"`
		Port          int           `yaml:"port"`
		SweepInterval time.Duration `yaml:"sweepInterval"`
	} `yaml:"app"`
	Infra struct {
		MySQL struct {
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Addr     string `yaml:"addr"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			// 为空时 sweep worker 不做选主，直接本地执行
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`
}

var currentConfig atomic.Pointer[Config]

// GetCurrentConfig 返回当前生效的配置快照。
func GetCurrentConfig() *Config {
	if c := currentConfig.Load(); c != nil {
		return c
	}
	c := defaultConfig()
	currentConfig.Store(c)
	return c
}

// LoadConfig 从 yaml 文件加载配置，环境变量优先级高于文件。
// path 为空时只使用默认值 + 环境变量。
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	currentConfig.Store(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "offer-service"
	cfg.App.Port = 8084
	cfg.App.SweepInterval = 30 * time.Second
	cfg.Infra.MySQL.User = "root"
	cfg.Infra.MySQL.Addr = "localhost:3306"
	cfg.Infra.MySQL.Database = "gpoffer"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.Topic = "offer-lifecycle-events"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MYSQL_ADDR"); v != "" {
		cfg.Infra.MySQL.Addr = v
	}
	if v := os.Getenv("MYSQL_USER"); v != "" {
		cfg.Infra.MySQL.User = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		cfg.Infra.MySQL.Password = v
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		cfg.Infra.MySQL.Database = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("ZOOKEEPER_SERVERS"); v != "" {
		cfg.Infra.Zookeeper.Servers = strings.Split(v, ",")
	}
}

// MySQLDSN 基于 go-sql-driver 的 Config 拼装 DSN，避免手写连接串。
func (c *Config) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.Infra.MySQL.User
	mc.Passwd = c.Infra.MySQL.Password
	mc.Net = "tcp"
	mc.Addr = c.Infra.MySQL.Addr
	mc.DBName = c.Infra.MySQL.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}
