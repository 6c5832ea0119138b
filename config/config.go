package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/corefin/matchbook/pkg/engine"
	postgres_wrapper "github.com/corefin/matchbook/pkg/infra/postgres"
	redis_wrapper "github.com/corefin/matchbook/pkg/infra/redis"
)

type PriceBandConfig struct {
	Floor float64 `yaml:"floor"`
	Ceil  float64 `yaml:"ceil"`
}

type RiskConfig struct {
	MaxQuantity  int64                      `yaml:"max_quantity"`
	PriceBands   map[string]PriceBandConfig `yaml:"price_bands"`
	TickSizeFile string                     `yaml:"tick_size_file"`
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	TradeTopic      string   `yaml:"trade_topic"`
	OrderEventTopic string   `yaml:"order_event_topic"`
	GroupID         string   `yaml:"group_id"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	LogLevel    string                           `yaml:"log_level"`
	Engine      *engine.Config                   `yaml:"engine"`
	Risk        *RiskConfig                      `yaml:"risk"`
	JournalDB   *postgres_wrapper.PostgresConfig `yaml:"journal_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Kafka       *KafkaConfig                     `yaml:"kafka"`
	API         *APIConfig                       `yaml:"api"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{
		Engine: &engine.Config{},
	}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
