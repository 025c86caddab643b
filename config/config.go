package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress       string        `mapstructure:"http_address"`
	RPCAddress        string        `mapstructure:"rpc_address"`
	HealthAddress     string        `mapstructure:"health_address"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	Heartbeat         time.Duration `mapstructure:"heartbeat"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	IdleCheckInterval time.Duration `mapstructure:"idle_check_interval"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type GameConfig struct {
	BoardSize   int    `mapstructure:"board_size"`
	CaptureRule string `mapstructure:"capture_rule"`
	IllegalMove string `mapstructure:"illegal_move"`
	MaxMoves    int    `mapstructure:"max_moves"`
	Seed        int64  `mapstructure:"seed"`
}

type DatabaseConfig struct {
	Driver         string         `mapstructure:"driver"`
	MemoryCapacity int            `mapstructure:"memory_capacity"`
	Postgres       PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Address     string        `mapstructure:"address"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.health_address", ":8082")
	v.SetDefault("server.read_limit", 4096)
	v.SetDefault("server.heartbeat", "30s")
	v.SetDefault("server.idle_timeout", "15m")
	v.SetDefault("server.idle_check_interval", "1m")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("game.board_size", 19)
	v.SetDefault("game.capture_rule", "simultaneous")
	v.SetDefault("game.illegal_move", "terminate")
	v.SetDefault("game.max_moves", 361)
	v.SetDefault("game.seed", 0)

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.memory_capacity", 10000)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "gomind")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.snapshot_ttl", "1h")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from path. A missing file leaves the defaults
// in place; GOMIND_* environment variables override both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("gomind")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
