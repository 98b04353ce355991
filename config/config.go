package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverREST     = "rest"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Auth      AuthConfig      `yaml:"auth"`
	Backend   BackendConfig   `yaml:"backend"`
	Itinerary ItineraryConfig `yaml:"itinerary"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	FlightEventsTopic  string   `yaml:"flight_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	// JWTSecret signs HS256 bearer tokens. Auth is disabled when empty.
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	// ServiceToken is sent to the REST backend as bearer token.
	ServiceToken string `yaml:"service_token"`
}

// BackendConfig selects where flights are persisted.
type BackendConfig struct {
	Driver            string  `yaml:"driver"`
	BaseURL           string  `yaml:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type ItineraryConfig struct {
	FlightsCacheTTL     int  `yaml:"flights_cache_ttl_seconds"`
	AirportsCacheTTL    int  `yaml:"airports_cache_ttl_seconds"`
	RejectInvertedTimes bool `yaml:"reject_inverted_times"`
	MatchLegTimes       bool `yaml:"match_leg_times"`
	CheckAirplaneOrigin bool `yaml:"check_airplane_origin"`
}

type WorkerConfig struct {
	DirectoryRefreshMinutes int `yaml:"directory_refresh_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8081"
	}
	if c.Backend.Driver == "" {
		c.Backend.Driver = DriverPostgres
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 5
	}
	if c.Backend.RequestsPerSecond == 0 {
		c.Backend.RequestsPerSecond = 20
	}
	if c.Itinerary.FlightsCacheTTL == 0 {
		c.Itinerary.FlightsCacheTTL = 60
	}
	if c.Itinerary.AirportsCacheTTL == 0 {
		c.Itinerary.AirportsCacheTTL = 3600
	}
	if c.Worker.DirectoryRefreshMinutes == 0 {
		c.Worker.DirectoryRefreshMinutes = 30
	}
}

func (c *Config) validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"backend.timeout_seconds", float64(c.Backend.TimeoutSeconds)},
		{"backend.requests_per_second", c.Backend.RequestsPerSecond},
		{"itinerary.flights_cache_ttl_seconds", float64(c.Itinerary.FlightsCacheTTL)},
		{"itinerary.airports_cache_ttl_seconds", float64(c.Itinerary.AirportsCacheTTL)},
		{"worker.directory_refresh_minutes", float64(c.Worker.DirectoryRefreshMinutes)},
	} {
		if v.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", v.name, v.value)
		}
	}

	switch c.Backend.Driver {
	case DriverPostgres:
	case DriverREST:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend.base_url is required for driver %q", DriverREST)
		}
	default:
		return fmt.Errorf("unknown backend.driver %q", c.Backend.Driver)
	}
	return nil
}
