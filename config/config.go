package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Weather  WeatherConfig  `mapstructure:"weather"`
	API      APIConfig      `mapstructure:"api"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Database DatabaseConfig `mapstructure:"database"`
}

type WeatherConfig struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	GeocodingURL string        `mapstructure:"geocoding_url"`
	APIKey       string        `mapstructure:"api_key"`
	DefaultCity  string        `mapstructure:"default_city"`
	Units        string        `mapstructure:"units"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type APIConfig struct {
	Port    int    `mapstructure:"port"`
	Enabled bool   `mapstructure:"enabled"`
	WebPath string `mapstructure:"web_path"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
}

// Load reads configuration from configPath (or config.yaml in the usual
// places), then WEATHER_PANEL_* environment variables. A .env file in the
// working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/weather-panel")
	}

	v.SetEnvPrefix("weather_panel")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("weather.provider", "openweather")
	v.SetDefault("weather.base_url", "")
	v.SetDefault("weather.geocoding_url", "")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.default_city", "bangalore")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.timeout", "10s")
	v.SetDefault("api.port", 8046)
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.web_path", "./web")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "weather-panel")
	v.SetDefault("mqtt.client_id", "weather-panel")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("database.path", "./weather-panel.db")
	v.SetDefault("database.retention", "720h")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
