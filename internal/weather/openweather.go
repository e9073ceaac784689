package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenWeatherClient(baseURL, apiKey string, timeout time.Duration) *OpenWeatherClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultOpenWeatherURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type openWeatherResponse struct {
	Cod     providerCode `json:"cod"`
	Message string       `json:"message"`
	Name    string       `json:"name"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
		Pressure  *float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Icon        string `json:"icon"`
		Description string `json:"description"`
	} `json:"weather"`
}

// providerCode accepts the "cod" field as either a number or a numeric string;
// OpenWeather sends both depending on the outcome.
type providerCode int

func (c *providerCode) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("cod %q: %w", raw, err)
	}
	*c = providerCode(n)
	return nil
}

func (c *OpenWeatherClient) Name() string {
	return "openweather"
}

func (c *OpenWeatherClient) Current(ctx context.Context, place string, unit Unit) (*Snapshot, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is empty")
	}
	if strings.TrimSpace(place) == "" {
		return nil, fmt.Errorf("openweather location is empty")
	}
	if unit == "" {
		unit = Metric
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("openweather base url: %w", err)
	}
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + "/weather"

	query := url.Values{}
	query.Set("q", place)
	query.Set("units", string(unit))
	query.Set("appid", c.apiKey)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("openweather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openweather read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("openweather %q: %w", place, ErrPlaceNotFound)
	}

	var payload *openWeatherResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("openweather bad status %s: %w", resp.Status, ErrProviderStatus)
		}
		return nil, fmt.Errorf("openweather decode: %w: %v", ErrMalformedResponse, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("openweather decode: %w: empty body", ErrMalformedResponse)
	}

	switch {
	case payload.Cod == http.StatusNotFound:
		return nil, fmt.Errorf("openweather %q: %w", place, ErrPlaceNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("openweather bad status %s: %w", resp.Status, ErrProviderStatus)
	case payload.Cod != 0 && payload.Cod != http.StatusOK:
		return nil, fmt.Errorf("openweather cod %d %s: %w", payload.Cod, payload.Message, ErrProviderStatus)
	}

	snapshot := &Snapshot{
		Place:     place,
		Name:      payload.Name,
		Country:   payload.Sys.Country,
		Temp:      payload.Main.Temp,
		FeelsLike: payload.Main.FeelsLike,
		Humidity:  payload.Main.Humidity,
		Pressure:  payload.Main.Pressure,
		WindSpeed: payload.Wind.Speed,
		Unit:      unit,
		Provider:  c.Name(),
		FetchedAt: time.Now(),
	}
	if len(payload.Weather) > 0 {
		snapshot.Icon = payload.Weather[0].Icon
		snapshot.Description = payload.Weather[0].Description
	}

	return snapshot, nil
}
