package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrPlaceNotFound     = errors.New("place not found")
	ErrMalformedResponse = errors.New("malformed provider response")
	ErrProviderStatus    = errors.New("provider error status")
)

// Provider fetches current conditions for a place name.
type Provider interface {
	Name() string
	Current(ctx context.Context, place string, unit Unit) (*Snapshot, error)
}

type Unit string

const (
	Metric   Unit = "metric"
	Imperial Unit = "imperial"
)

func ParseUnit(value string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(value))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	default:
		return "", fmt.Errorf("unknown unit %q", value)
	}
}

// TemperatureSuffix is the letter shown after the degree sign.
func (u Unit) TemperatureSuffix() string {
	if u == Imperial {
		return "F"
	}
	return "C"
}

func (u Unit) SpeedSuffix() string {
	if u == Imperial {
		return "mph"
	}
	return "m/s"
}

// Snapshot is the current conditions for one place as reported by a provider.
// Numeric fields are nil when the provider left them out.
type Snapshot struct {
	Place       string    `json:"place"`
	Name        string    `json:"name,omitempty"`
	Country     string    `json:"country,omitempty"`
	Temp        *float64  `json:"temp,omitempty"`
	FeelsLike   *float64  `json:"feels_like,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	Pressure    *float64  `json:"pressure,omitempty"`
	WindSpeed   *float64  `json:"wind_speed,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	Unit        Unit      `json:"unit"`
	Provider    string    `json:"provider"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Symbol resolves the snapshot's condition code.
func (s *Snapshot) Symbol() Icon {
	if s == nil {
		return ResolveIcon("")
	}
	return ResolveIcon(s.Icon)
}
