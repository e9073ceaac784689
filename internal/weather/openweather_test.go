package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonPayload = `{
	"cod": 200,
	"name": "London",
	"sys": {"country": "GB"},
	"main": {"temp": 23.6, "feels_like": 22.1, "humidity": 64, "pressure": 1012},
	"wind": {"speed": 4.1},
	"weather": [{"icon": "10d", "description": "light rain"}]
}`

func newOpenWeatherServer(t *testing.T, status int, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.URL.Query()
		}
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenWeatherCurrent(t *testing.T) {
	var seen url.Values
	srv := newOpenWeatherServer(t, http.StatusOK, londonPayload, &seen)

	client := NewOpenWeatherClient(srv.URL+"/data/2.5", "secret", time.Second)
	snapshot, err := client.Current(context.Background(), "London", Imperial)
	require.NoError(t, err)

	assert.Equal(t, "London", seen.Get("q"))
	assert.Equal(t, "imperial", seen.Get("units"))
	assert.Equal(t, "secret", seen.Get("appid"))

	assert.Equal(t, "London", snapshot.Place)
	assert.Equal(t, "London", snapshot.Name)
	assert.Equal(t, "GB", snapshot.Country)
	require.NotNil(t, snapshot.Temp)
	assert.InDelta(t, 23.6, *snapshot.Temp, 0.001)
	require.NotNil(t, snapshot.FeelsLike)
	assert.InDelta(t, 22.1, *snapshot.FeelsLike, 0.001)
	require.NotNil(t, snapshot.Humidity)
	assert.InDelta(t, 64, *snapshot.Humidity, 0.001)
	require.NotNil(t, snapshot.Pressure)
	assert.InDelta(t, 1012, *snapshot.Pressure, 0.001)
	require.NotNil(t, snapshot.WindSpeed)
	assert.InDelta(t, 4.1, *snapshot.WindSpeed, 0.001)
	assert.Equal(t, "10d", snapshot.Icon)
	assert.Equal(t, "light rain", snapshot.Description)
	assert.Equal(t, Imperial, snapshot.Unit)
	assert.Equal(t, "openweather", snapshot.Provider)
	assert.False(t, snapshot.FetchedAt.IsZero())
}

func TestOpenWeatherMissingFieldsStayAbsent(t *testing.T) {
	srv := newOpenWeatherServer(t, http.StatusOK, `{"name": "Nowhere", "weather": []}`, nil)

	client := NewOpenWeatherClient(srv.URL+"/data/2.5", "secret", time.Second)
	snapshot, err := client.Current(context.Background(), "Nowhere", Metric)
	require.NoError(t, err)

	assert.Equal(t, "Nowhere", snapshot.Name)
	assert.Empty(t, snapshot.Country)
	assert.Nil(t, snapshot.Temp)
	assert.Nil(t, snapshot.FeelsLike)
	assert.Nil(t, snapshot.Humidity)
	assert.Nil(t, snapshot.Pressure)
	assert.Nil(t, snapshot.WindSpeed)
	assert.Empty(t, snapshot.Icon)
	assert.Equal(t, IconCloud, snapshot.Symbol())
}

func TestOpenWeatherErrors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found status", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, ErrPlaceNotFound},
		{"not found cod only", http.StatusOK, `{"cod":"404","message":"city not found"}`, ErrPlaceNotFound},
		{"unauthorized", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, ErrProviderStatus},
		{"server error html", http.StatusBadGateway, `<html>bad gateway</html>`, ErrProviderStatus},
		{"error cod in body", http.StatusOK, `{"cod":"429","message":"too many requests"}`, ErrProviderStatus},
		{"not json", http.StatusOK, `sunny`, ErrMalformedResponse},
		{"null body", http.StatusOK, `null`, ErrMalformedResponse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newOpenWeatherServer(t, tc.status, tc.body, nil)
			client := NewOpenWeatherClient(srv.URL+"/data/2.5", "secret", time.Second)

			snapshot, err := client.Current(context.Background(), "Atlantis", Metric)
			assert.Nil(t, snapshot)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOpenWeatherTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewOpenWeatherClient(base, "secret", time.Second)
	_, err := client.Current(context.Background(), "London", Metric)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPlaceNotFound)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestOpenWeatherRequiresKeyAndPlace(t *testing.T) {
	_, err := NewOpenWeatherClient("", "", 0).Current(context.Background(), "London", Metric)
	assert.Error(t, err)

	_, err = NewOpenWeatherClient("", "secret", 0).Current(context.Background(), "   ", Metric)
	assert.Error(t, err)
}

func TestOpenWeatherTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewOpenWeatherClient(srv.URL, "secret", 50*time.Millisecond)
	_, err := client.Current(context.Background(), "London", Metric)
	assert.Error(t, err)
}
