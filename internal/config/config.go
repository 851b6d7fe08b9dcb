package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/weiawesome/wes-io-live/support-service/pkg/config"
	"github.com/weiawesome/wes-io-live/support-service/pkg/database"
	"github.com/weiawesome/wes-io-live/support-service/pkg/pubsub"
)

type Config struct {
	Server      ServerConfig
	WebSocket   WebSocketConfig
	Auth        AuthConfig
	Database    database.Config
	Bus         pubsub.Config
	Events      EventsConfig
	Maintenance MaintenanceConfig
	Log         LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	// Inbound frames per second and burst allowed per connection.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type AuthConfig struct {
	Secret string
	Issuer string
}

// EventsConfig configures the domain event stream.
type EventsConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

type MaintenanceConfig struct {
	Enabled   bool
	Schedule  string
	IdleAfter time.Duration `mapstructure:"idle_after"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads config/<name>.yaml from configPath, then the environment.
func Load(configPath string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, "config")
	if err != nil {
		return nil, err
	}

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ShutdownTimeout = parseDuration(v, "server.shutdown_timeout", 10*time.Second)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Maintenance.IdleAfter = parseDuration(v, "maintenance.idle_after", 72*time.Hour)
	cfg.Bus.Redis.ReadTimeout = parseDuration(v, "bus.redis.read_timeout", 3*time.Second)
	cfg.Bus.Redis.WriteTimeout = parseDuration(v, "bus.redis.write_timeout", 3*time.Second)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.rate_limit", 10)
	v.SetDefault("websocket.rate_burst", 20)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "support")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "support")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "support.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("bus.driver", pubsub.DriverNone)
	v.SetDefault("bus.redis.address", "localhost:6379")
	v.SetDefault("bus.redis.password", "")
	v.SetDefault("bus.redis.db", 0)
	v.SetDefault("bus.redis.pool_size", 10)
	v.SetDefault("bus.redis.read_timeout", "3s")
	v.SetDefault("bus.redis.write_timeout", "3s")
	v.SetDefault("bus.kafka.brokers", "localhost:9092")
	v.SetDefault("bus.kafka.group_id", "support-service")
	v.SetDefault("bus.kafka.partitions", 4)
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", "localhost:9092")
	v.SetDefault("events.topic", "support-events")
	v.SetDefault("events.partitions", 8)
	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.schedule", "@every 1h")
	v.SetDefault("maintenance.idle_after", "72h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("auth.secret", "JWT_SECRET")
	v.BindEnv("auth.issuer", "JWT_ISSUER")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("bus.driver", "BUS_DRIVER")
	v.BindEnv("bus.redis.address", "REDIS_ADDRESS")
	v.BindEnv("bus.redis.password", "REDIS_PASSWORD")
	v.BindEnv("bus.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("events.enabled", "EVENTS_ENABLED")
	v.BindEnv("events.brokers", "KAFKA_BROKERS")
	v.BindEnv("events.topic", "EVENTS_TOPIC")
	v.BindEnv("log.level", "LOG_LEVEL")
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
