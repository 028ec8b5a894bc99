package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port            string
	PprofPort       string
	Mode            string
	AllowedOrigin   string
	ShutdownTimeout time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

type KafkaConfig struct {
	Broker string
	Topic  string
}

type WeatherConfig struct {
	APIKey          string
	BaseURL         string
	CountryCode     string
	CacheTTL        time.Duration
	Timeout         time.Duration
	RetryMax        int
	WarmSchedule    string
	WarmPlaces      []string
	WarmConcurrency int
}

type MapConfig struct {
	TileURL     string
	Attribution string
	MaxZoom     int
	Zoom        float64
	Padding     int
	SettleDelay time.Duration
	Seed        uint64
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type ObservabilityConfig struct {
	ServiceName  string
	OTLPEndpoint string
	MetricsAddr  string
	LogLevel     string
	LogFormat    string
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
	Minio    MinioConfig
	Kafka    KafkaConfig
}

type Config struct {
	Server        ServerConfig
	Repositories  RepositoriesConfig
	Weather       WeatherConfig
	Map           MapConfig
	JWT           JWTConfig
	Observability ObservabilityConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8091"),
			PprofPort:       getEnvOrDefault("PPROF_PORT", "6060"),
			Mode:            getEnvOrDefault("GIN_MODE", "release"),
			AllowedOrigin:   getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "loci_itinerary"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: int32(getEnvInt("POSTGRES_MAX_CONNS", 30)),
				MinConns: int32(getEnvInt("POSTGRES_MIN_CONNS", 5)),
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", ""),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
			},
			Minio: MinioConfig{
				Endpoint:  getEnvOrDefault("MINIO_ENDPOINT", ""),
				AccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnvOrDefault("MINIO_SECRET_KEY", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
				Bucket:    getEnvOrDefault("MINIO_BUCKET", "itinerary-exports"),
				Region:    getEnvOrDefault("MINIO_REGION", ""),
			},
			Kafka: KafkaConfig{
				Broker: getEnvOrDefault("KAFKA_BROKER", ""),
				Topic:  getEnvOrDefault("KAFKA_EXPORT_TOPIC", "itinerary.exported"),
			},
		},
		Weather: WeatherConfig{
			APIKey:          getEnvOrDefault("OPENWEATHER_API_KEY", ""),
			BaseURL:         getEnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
			CountryCode:     getEnvOrDefault("OPENWEATHER_COUNTRY", "IN"),
			CacheTTL:        getEnvDuration("WEATHER_CACHE_TTL", 10*time.Minute),
			Timeout:         getEnvDuration("WEATHER_TIMEOUT", 5*time.Second),
			RetryMax:        getEnvInt("WEATHER_RETRY_MAX", 2),
			WarmSchedule:    getEnvOrDefault("WEATHER_WARM_SCHEDULE", "*/15 * * * *"),
			WarmPlaces:      getEnvList("WEATHER_WARM_PLACES", []string{"Navi Mumbai", "Vashi", "Nerul", "Kharghar", "CBD Belapur", "Panvel"}),
			WarmConcurrency: getEnvInt("WEATHER_WARM_CONCURRENCY", 4),
		},
		Map: MapConfig{
			TileURL:     getEnvOrDefault("MAP_TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),
			Attribution: getEnvOrDefault("MAP_TILE_ATTRIBUTION", "&copy; OpenStreetMap contributors"),
			MaxZoom:     getEnvInt("MAP_MAX_ZOOM", 19),
			Zoom:        getEnvFloat("MAP_DEFAULT_ZOOM", 12),
			Padding:     getEnvInt("MAP_FIT_PADDING", 50),
			SettleDelay: getEnvDuration("MAP_SETTLE_DELAY", 100*time.Millisecond),
			Seed:        uint64(getEnvInt("MAP_FALLBACK_SEED", 0)),
		},
		JWT: JWTConfig{
			Secret:     getEnvOrDefault("JWT_SECRET_KEY", ""),
			Issuer:     getEnvOrDefault("JWT_ISSUER", "loci-itinerary-maps"),
			Expiration: getEnvDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "loci-itinerary-maps"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9464"),
			LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
			LogFormat:    getEnvOrDefault("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.Repositories.Postgres.Password == "" {
		return fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.Map.SettleDelay < 0 {
		return fmt.Errorf("MAP_SETTLE_DELAY must not be negative")
	}
	m := c.Repositories.Minio
	if m.Endpoint != "" && (m.AccessKey == "" || m.SecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
