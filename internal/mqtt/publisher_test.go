package mqtt

import (
	"testing"

	"weather-panel/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestSlug(t *testing.T) {
	assert.Equal(t, "new-york", slug("New York"))
	assert.Equal(t, "são-paulo", slug("  São Paulo "))
	assert.Equal(t, "a-b", slug("a/+#b"))
	assert.Equal(t, "unknown", slug(" / "))
}

func TestReadingTopics(t *testing.T) {
	s := &weather.Snapshot{
		Place:       "london",
		Name:        "London",
		Temp:        ptr(12.5),
		Humidity:    ptr(80),
		Icon:        "09d",
		Description: "shower rain",
	}

	topics := readingTopics("weather-panel", s)
	assert.Equal(t, map[string]string{
		"weather-panel/london/condition":   "cloud-rain",
		"weather-panel/london/description": "shower rain",
		"weather-panel/london/temperature": "12.5",
		"weather-panel/london/humidity":    "80",
	}, topics)
	assert.Equal(t, "weather-panel/london/status", statusTopic("weather-panel", s))
}

func TestReadingTopicsFallsBackToPlace(t *testing.T) {
	s := &weather.Snapshot{Place: "Rio de Janeiro"}
	assert.Equal(t, "wp/rio-de-janeiro/status", statusTopic("wp", s))
}

func TestDiscoveryConfigs(t *testing.T) {
	configs := discoveryConfigs("weather-panel", "Paris", weather.Imperial)
	require.Len(t, configs, 6)

	temp := configs["homeassistant/sensor/weather_panel_paris/temperature/config"]
	require.NotNil(t, temp)
	assert.Equal(t, "°F", temp["unit_of_measurement"])
	assert.Equal(t, "weather-panel/paris/temperature", temp["state_topic"])

	cond := configs["homeassistant/sensor/weather_panel_paris/condition/config"]
	require.NotNil(t, cond)
	_, hasUnit := cond["unit_of_measurement"]
	assert.False(t, hasUnit)
}

func TestDisabledPublisherIsNoop(t *testing.T) {
	p, err := NewPublisher(PublisherConfig{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, p.Publish(&weather.Snapshot{Name: "Oslo"}))
	assert.NoError(t, p.PublishHomeAssistantDiscovery("Oslo", weather.Metric))
	assert.False(t, p.IsConnected())
	assert.NotPanics(t, p.Close)
}
