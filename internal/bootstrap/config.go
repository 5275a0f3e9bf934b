package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	EnginePath         string `mapstructure:"ENGINE_PATH"`
	EngineDepthRoot    int    `mapstructure:"ENGINE_DEPTH_ROOT"`
	EngineDepthShallow int    `mapstructure:"ENGINE_DEPTH_CANDIDATE"`
	EngineDepthPlayed  int    `mapstructure:"ENGINE_DEPTH_PLAYED"`
	EngineMoveTimeMs   int    `mapstructure:"ENGINE_MOVE_TIME_MS"`
	LinePlyCap         int    `mapstructure:"LINE_PLY_CAP"`
	PVPlyCap           int    `mapstructure:"PV_PLY_CAP"`
	RedisUrl           string `mapstructure:"REDIS_URL"`
	MongoUri           string `mapstructure:"MONGO_URI"`
	IsLocalCors        bool   `mapstructure:"LOCAL_CORS"`
	SimplifyOnThreats  bool   `mapstructure:"SIMPLIFY_ON_THREATS"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.EnginePath == "" {
		cfg.EnginePath = "stockfish"
	}
	if cfg.EngineDepthRoot == 0 {
		cfg.EngineDepthRoot = 18
	}
	if cfg.EngineDepthShallow == 0 {
		cfg.EngineDepthShallow = 12
	}
	if cfg.EngineDepthPlayed == 0 {
		cfg.EngineDepthPlayed = 15
	}
	if cfg.EngineMoveTimeMs == 0 {
		cfg.EngineMoveTimeMs = 1000
	}
	if cfg.LinePlyCap == 0 {
		cfg.LinePlyCap = 5
	}
	if cfg.PVPlyCap == 0 {
		cfg.PVPlyCap = 10
	}
}
