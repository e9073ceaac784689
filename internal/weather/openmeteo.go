package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultOpenMeteoURL          = "https://api.open-meteo.com/v1"
	DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1"
)

type OpenMeteoClient struct {
	baseURL      string
	geocodingURL string
	client       *http.Client
}

func NewOpenMeteoClient(baseURL, geocodingURL string, timeout time.Duration) *OpenMeteoClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if strings.TrimSpace(geocodingURL) == "" {
		geocodingURL = DefaultOpenMeteoGeocodingURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteoClient{
		baseURL:      baseURL,
		geocodingURL: geocodingURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type openMeteoResponse struct {
	Current *struct {
		Time                string   `json:"time"`
		Temperature         *float64 `json:"temperature_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		RelativeHumidity    *float64 `json:"relative_humidity_2m"`
		PressureMSL         *float64 `json:"pressure_msl"`
		WindSpeed           *float64 `json:"wind_speed_10m"`
		WeatherCode         *int     `json:"weather_code"`
		IsDay               int      `json:"is_day"`
	} `json:"current"`
}

type openMeteoGeoResponse struct {
	Results []openMeteoPlace `json:"results"`
}

type openMeteoPlace struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (c *OpenMeteoClient) Name() string {
	return "openmeteo"
}

func (c *OpenMeteoClient) Current(ctx context.Context, place string, unit Unit) (*Snapshot, error) {
	if strings.TrimSpace(place) == "" {
		return nil, fmt.Errorf("open-meteo location is empty")
	}
	if unit == "" {
		unit = Metric
	}

	location, err := c.resolveLocation(ctx, place)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", location.Latitude))
	query.Set("longitude", fmt.Sprintf("%.6f", location.Longitude))
	query.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,pressure_msl,wind_speed_10m,weather_code,is_day")
	query.Set("timezone", "auto")
	if unit == Imperial {
		query.Set("temperature_unit", "fahrenheit")
		query.Set("wind_speed_unit", "mph")
	} else {
		query.Set("wind_speed_unit", "ms")
	}

	var payload openMeteoResponse
	if err := c.getJSON(ctx, c.baseURL, "/forecast", query, &payload); err != nil {
		return nil, err
	}

	if payload.Current == nil {
		return nil, fmt.Errorf("open-meteo current data missing: %w", ErrMalformedResponse)
	}

	current := payload.Current
	snapshot := &Snapshot{
		Place:     place,
		Name:      location.Name,
		Country:   location.CountryCode,
		Temp:      current.Temperature,
		FeelsLike: current.ApparentTemperature,
		Humidity:  current.RelativeHumidity,
		Pressure:  current.PressureMSL,
		WindSpeed: current.WindSpeed,
		Unit:      unit,
		Provider:  c.Name(),
		FetchedAt: time.Now(),
	}
	if current.WeatherCode != nil {
		snapshot.Icon, snapshot.Description = openMeteoCondition(*current.WeatherCode, current.IsDay == 1)
	}

	return snapshot, nil
}

func (c *OpenMeteoClient) resolveLocation(ctx context.Context, place string) (openMeteoPlace, error) {
	query := url.Values{}
	query.Set("name", strings.TrimSpace(place))
	query.Set("count", "1")
	query.Set("language", "en")
	query.Set("format", "json")

	var payload openMeteoGeoResponse
	if err := c.getJSON(ctx, c.geocodingURL, "/search", query, &payload); err != nil {
		return openMeteoPlace{}, fmt.Errorf("open-meteo geocoding: %w", err)
	}

	if len(payload.Results) == 0 {
		return openMeteoPlace{}, fmt.Errorf("open-meteo geocoding %q: %w", place, ErrPlaceNotFound)
	}

	return payload.Results[0], nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, base, path string, query url.Values, out any) error {
	endpoint, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("open-meteo base url: %w", err)
	}
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("open-meteo request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("open-meteo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("open-meteo bad status %s: %w", resp.Status, ErrProviderStatus)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("open-meteo decode: %w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// openMeteoCondition translates a WMO weather code into the OpenWeather
// condition-code vocabulary so both providers share ResolveIcon.
func openMeteoCondition(code int, day bool) (string, string) {
	suffix := "n"
	if day {
		suffix = "d"
	}

	switch code {
	case 0:
		return "01" + suffix, "clear sky"
	case 1:
		return "02" + suffix, "mainly clear"
	case 2:
		return "03" + suffix, "partly cloudy"
	case 3:
		return "04" + suffix, "overcast"
	case 45, 48:
		return "50" + suffix, "fog"
	case 51, 53, 55, 56, 57:
		return "09" + suffix, "drizzle"
	case 61, 63, 65, 66, 67:
		return "10" + suffix, "rain"
	case 71, 73, 75, 77:
		return "13" + suffix, "snow"
	case 80, 81, 82:
		return "09" + suffix, "rain showers"
	case 85, 86:
		return "13" + suffix, "snow showers"
	case 95:
		return "11" + suffix, "thunderstorm"
	case 96, 99:
		return "11" + suffix, "thunderstorm with hail"
	default:
		return "", "unknown conditions"
	}
}
