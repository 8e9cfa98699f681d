package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	SearchAddress string        `yaml:"search_address" env:"SEARCH_ADDRESS" env-default:"http://localhost:6380"`
	Timeout       time.Duration `yaml:"timeout" env:"SEARCH_TIMEOUT" env-default:"10s"`
	SearchRate    float64       `yaml:"search_rate" env:"SEARCH_RATE" env-default:"0"`
	CacheSize     int           `yaml:"cache_size" env:"CACHE_SIZE" env-default:"0"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"5m"`
	BrokerAddress string        `yaml:"broker_address" env:"BROKER_ADDRESS"`
	Token         string        `yaml:"token" env:"SEARCH_TOKEN"`
	NumShorthand  bool          `yaml:"num_shorthand" env:"NUM_SHORTHAND" env-default:"false"`
}

// Load reads the YAML file at path with environment overrides. An empty
// path reads the environment only.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		err := cleanenv.ReadEnv(&cfg)
		return cfg, err
	}
	err := cleanenv.ReadConfig(path, &cfg)
	return cfg, err
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config %s: %s", configPath, err)
	}
	return cfg
}
