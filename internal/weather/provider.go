package weather

import (
	"fmt"
	"strings"
	"time"
)

type ProviderConfig struct {
	Name         string
	BaseURL      string
	GeocodingURL string
	APIKey       string
	Timeout      time.Duration
}

// NewProvider builds the provider named in cfg. An empty name selects
// OpenWeatherMap.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", "openweather", "openweathermap":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openweather provider requires an API key")
		}
		return NewOpenWeatherClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "openmeteo", "open-meteo":
		return NewOpenMeteoClient(cfg.BaseURL, cfg.GeocodingURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Name)
	}
}
